// Command dataset builds the multi-season F1 results corpus and writes it as
// CSV, optionally publishing every row to Kafka. Configuration is read from
// the environment; see internal/config.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/cache"
	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/f1-dataset-etl/internal/adapter/kafka"
	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/openf1"
	"github.com/couchcryptid/f1-dataset-etl/internal/config"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
	"github.com/couchcryptid/f1-dataset-etl/internal/pipeline"
	"github.com/couchcryptid/f1-dataset-etl/internal/report"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger, observability.NewMetrics()); err != nil {
		logger.Error("dataset build failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PushEnabled() {
		defer pushMetrics(cfg, metrics, logger)
	}

	clock := clockwork.NewRealClock()

	db, err := openCache(ctx, cfg.CachePath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := cache.NewSQLiteStore(db, cfg.CacheTTL, clock)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	fetchCache := cache.NewTiered(cache.NewLRU(cfg.CacheMemorySize), store, metrics)
	logger.Info("fetch cache enabled", "path", cfg.CachePath, "memory_entries", cfg.CacheMemorySize, "ttl", cfg.CacheTTL)

	source := openf1.NewClient(cfg.OpenF1BaseURL, cfg.OpenF1Timeout, fetchCache, metrics, clock, logger)
	seasons := pipeline.NewSeasonBuilder(source, logger, metrics)

	loaders := pipeline.Loaders{csvfile.NewWriter(cfg.OutputPath, logger)}
	if cfg.PublishEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("corpus publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(seasons, loaders, logger, metrics, clock)
	corpus, err := p.Run(ctx, cfg.Years)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("dataset build interrupted")
		}
		return err
	}

	report.Summary(os.Stdout, corpus, cfg.OutputPath)
	return nil
}

// pushMetrics runs after the build whether or not it succeeded, so failed
// and interrupted runs are visible too.
func pushMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.PushJob); err != nil {
		logger.Error("metrics push failed", "error", err)
		return
	}
	logger.Info("metrics pushed", "gateway", cfg.PushgatewayURL, "job", cfg.PushJob)
}

func openCache(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure cache database: %w", err)
		}
	}
	return db, nil
}
