package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/stonezone/surfcastai/internal/config"
	"github.com/stonezone/surfcastai/internal/domain"
)

// Writer produces prediction batches to the sink topic.
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
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple prediction batches to the sink
// topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, batches []domain.PredictionBatch) error {
	if len(batches) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batches))
	for i := range batches {
		msg, err := serializeToMessage(batches[i])
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

// serializeToMessage marshals a PredictionBatch into a Kafka message keyed by
// the source analysis ID.
func serializeToMessage(batch domain.PredictionBatch) (kafkago.Message, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction batch: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(batch.AnalysisID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "prediction_count", Value: []byte(strconv.Itoa(len(batch.Predictions)))},
			{Key: "processed_at", Value: []byte(batch.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
