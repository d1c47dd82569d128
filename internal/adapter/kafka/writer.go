package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-graph/internal/config"
	"github.com/couchcryptid/climate-graph/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces climate records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes records to the sink topic in a single
// WriteMessages call. Records are keyed by title so that repeated lookups of a
// place land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Record into a Kafka message.
func serializeToMessage(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize climate record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Title),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "title", Value: []byte(rec.Title)},
			{Key: "processed_at", Value: []byte(rec.RetrievedAt.Format(time.RFC3339))},
		},
	}, nil
}
