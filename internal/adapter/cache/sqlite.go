package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

const schema = `
CREATE TABLE IF NOT EXISTS payloads (
    cache_key TEXT PRIMARY KEY,
    fetched_at DATETIME NOT NULL,
    payload_compressed BLOB NOT NULL,
    payload_hash TEXT NOT NULL
);
`

// SQLiteStore persists raw upstream payloads on disk, gzip-compressed and
// keyed by request. Entries older than the TTL are treated as misses; a zero
// TTL keeps entries forever.
type SQLiteStore struct {
	db    *sql.DB
	ttl   time.Duration
	clock clockwork.Clock
}

// NewSQLiteStore wraps an open database. Call Migrate before use.
func NewSQLiteStore(db *sql.DB, ttl time.Duration, clock clockwork.Clock) *SQLiteStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLiteStore{db: db, ttl: ttl, clock: clock}
}

// Migrate creates the payload table if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}
	return nil
}

// Get returns the stored payload for key. ok is false on a miss or an expired entry.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var fetchedAt time.Time
	var compressed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload_compressed FROM payloads WHERE cache_key = ?`, key,
	).Scan(&fetchedAt, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}

	if s.ttl > 0 && s.clock.Since(fetchedAt) > s.ttl {
		return nil, false, nil
	}

	payload, err := decompress(compressed)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Put stores or replaces the payload for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte) error {
	compressed, err := compress(payload)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(payload)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payloads (cache_key, fetched_at, payload_compressed, payload_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload_compressed = excluded.payload_compressed,
			payload_hash = excluded.payload_hash
	`, key, s.clock.Now().UTC(), compressed, hex.EncodeToString(hash[:]))
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

func compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return payload, nil
}
