package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/stonezone/surfcastai/internal/config"
	"github.com/stonezone/surfcastai/internal/domain"
)

// drainWait bounds how long ExtractBatch waits for each message after the
// first one, so a partially filled batch is returned promptly.
const drainWait = 250 * time.Millisecond

// Reader consumes analysis-text messages from the source topic using a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaSourceTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch fetches up to batchSize messages. It blocks on the first
// message, then drains whatever else arrives within drainWait per message.
// Offsets are not committed here; each RawAnalysis carries a Commit function
// the pipeline invokes once the message is fully processed.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawAnalysis, error) {
	batch := make([]domain.RawAnalysis, 0, batchSize)

	for len(batch) < batchSize {
		fetchCtx := ctx
		var cancel context.CancelFunc
		if len(batch) > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, drainWait)
		}

		msg, err := r.reader.FetchMessage(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if len(batch) > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break
			}
			if len(batch) > 0 && ctx.Err() != nil {
				break
			}
			return nil, err
		}

		raw := mapMessageToRawAnalysis(msg)
		raw.Commit = func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		}
		batch = append(batch, raw)
	}

	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawAnalysis copies a Kafka message into the domain shape. The
// Commit function is attached by the caller.
func mapMessageToRawAnalysis(msg kafkago.Message) domain.RawAnalysis {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawAnalysis{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
