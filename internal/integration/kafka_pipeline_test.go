//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/kafka"
	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
	"github.com/couchcryptid/f1-dataset-etl/internal/pipeline"
)

const testCorpusTopic = "test-corpus-rows"

// publishedRow holds a deserialized message read from the corpus topic.
type publishedRow struct {
	Fields  map[string]any
	Key     string
	Headers map[string]string
}

// gridSource serves one conventional event per year with a full grid.
type gridSource struct {
	drivers int
}

func (g gridSource) Schedule(_ context.Context, year int) ([]domain.Event, error) {
	return []domain.Event{
		{Year: year, RoundNumber: 1, Name: "Bahrain Grand Prix", Format: domain.FormatConventional},
		{Year: year, Name: "Pre-Season Testing", Format: domain.FormatTesting},
	}, nil
}

func (g gridSource) LoadSession(_ context.Context, event domain.Event, kind domain.SessionKind) (domain.Session, error) {
	s := domain.Session{Event: event, Kind: kind}
	for i := 1; i <= g.drivers; i++ {
		pos := i
		code := fmt.Sprintf("D%02d", i)
		lapTime := 95.0 + float64(i)
		s.Results = append(s.Results, domain.Result{
			FullName: "Driver " + code, Abbreviation: code, TeamName: "Team",
			GridPosition: &pos, Position: &pos, Status: "Finished",
		})
		s.Laps = append(s.Laps, domain.Lap{Driver: code, LapNumber: 1, LapTime: &lapTime, Compound: "SOFT"})
	}
	return s, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("f1-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readPublished reads a single message from the corpus consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedRow {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from corpus topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var fields map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &fields), "unmarshal corpus message")

	return publishedRow{Fields: fields, Key: string(msg.Key), Headers: headers}
}

// TestCorpusPublishedToKafka runs the corpus build with both the CSV sink and
// the Kafka publisher and checks that every row reaches the topic.
func TestCorpusPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testCorpusTopic)

	writer := kafka.NewWriter([]string{broker}, testCorpusTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	outPath := filepath.Join(t.TempDir(), "f1_dataset.csv")
	metrics := observability.NewMetricsForTesting()
	seasons := pipeline.NewSeasonBuilder(gridSource{drivers: 20}, discardLogger(), metrics)
	loader := pipeline.Loaders{csvfile.NewWriter(outPath, discardLogger()), writer}
	p := pipeline.New(seasons, loader, discardLogger(), metrics, clockwork.NewRealClock())

	corpus, err := p.Run(ctx, []int{2022, 2023})
	require.NoError(t, err)
	require.Equal(t, 40, corpus.Len())

	_, records, err := csvfile.Read(outPath)
	require.NoError(t, err)
	assert.Len(t, records, 40)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testCorpusTopic,
		GroupID:     fmt.Sprintf("test-corpus-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]publishedRow, 0, corpus.Len())
	for len(received) < corpus.Len() {
		received = append(received, readPublished(ctx, t, consumer))
	}

	yearCounts := map[string]int{}
	winners := 0
	for _, r := range received {
		yearCounts[r.Headers["year"]]++
		assert.Equal(t, "Bahrain Grand Prix", r.Headers["race"])
		assert.Equal(t, r.Headers["year"]+"|Bahrain Grand Prix|"+r.Fields[domain.ColCode].(string), r.Key)
		if r.Fields[domain.ColWinner] == float64(1) {
			winners++
		}
	}
	assert.Equal(t, 20, yearCounts["2022"])
	assert.Equal(t, 20, yearCounts["2023"])
	assert.Equal(t, 2, winners, "one winner per event")
}
