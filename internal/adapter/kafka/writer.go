package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/water-quality-service/internal/config"
	"github.com/couchcryptid/water-quality-service/internal/history"
)

// Writer publishes recorded history entries to the results topic.
// It implements pipeline.Publisher and the shared readiness checker.
type Writer struct {
	writer  *kafkago.Writer
	brokers []string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured results topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// Entries are published one per request; don't hold them for a batch.
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, brokers: cfg.KafkaBrokers, logger: logger}
}

// Publish serializes the entry and writes it keyed by entry ID, so every
// result for a given entry lands on the same partition.
func (w *Writer) Publish(ctx context.Context, sessionID string, e history.Entry) error {
	msg, err := serializeToMessage(sessionID, e)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write result %s: %w", e.ID, err)
	}
	return nil
}

// CheckReadiness dials the brokers in turn and succeeds on the first that answers.
func (w *Writer) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, b := range w.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conn.Close() //nolint:errcheck // readiness dial only
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", errors.Join(errs...))
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a history entry into a Kafka message.
func serializeToMessage(sessionID string, e history.Entry) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize history entry: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(e.ID.String()),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafkago.Header{
			{Key: "quality", Value: []byte(e.Result.Quality)},
			{Key: "potable", Value: []byte(strconv.FormatBool(e.Result.Potable))},
			{Key: "session_id", Value: []byte(sessionID)},
			{Key: "recorded_at", Value: []byte(e.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
