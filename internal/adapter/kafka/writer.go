// Package kafka publishes corpus rows to a Kafka topic so downstream
// consumers can pick up a fresh dataset without reading the CSV file.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// batchSize caps the number of messages handed to a single WriteMessages call.
const batchSize = 500

// Writer produces corpus rows to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the corpus topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes one JSON message per corpus row. Rows of the same driver
// and event share a key and therefore a partition.
func (w *Writer) Load(ctx context.Context, corpus domain.Table) error {
	msgs := make([]kafkago.Message, 0, batchSize)
	published := 0

	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish corpus rows: %w", err)
		}
		published += len(msgs)
		msgs = msgs[:0]
		return nil
	}

	for i := range corpus.Rows {
		msg, err := serializeRow(corpus.Columns, corpus.Rows[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	w.logger.Info("corpus published", "topic", w.writer.Topic, "rows", published)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRow marshals a row into a message whose value is a JSON object
// keyed by column name. Null columns are JSON nulls.
func serializeRow(columns []string, row domain.Row) (kafkago.Message, error) {
	obj := make(map[string]any, len(columns))
	for _, col := range columns {
		obj[col] = row.Value(col)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row %s/%s: %w", row.Race, row.Code, err)
	}
	return kafkago.Message{
		Key:   []byte(rowKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(row.Year))},
			{Key: "race", Value: []byte(row.Race)},
		},
	}, nil
}

func rowKey(row domain.Row) string {
	return strconv.Itoa(row.Year) + "|" + row.Race + "|" + row.Code
}
