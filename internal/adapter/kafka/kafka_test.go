package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonezone/surfcastai/internal/domain"
)

func TestMapMessageToRawAnalysis(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("analysis-1"),
		Value:     []byte(`{"id":"analysis-1"}`),
		Topic:     "marine-analysis-text",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("opc")},
		},
	}

	raw := mapMessageToRawAnalysis(msg)

	assert.Equal(t, []byte("analysis-1"), raw.Key)
	assert.JSONEq(t, `{"id":"analysis-1"}`, string(raw.Value))
	assert.Equal(t, "marine-analysis-text", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "opc", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 10, 8, 15, 10, 0, 0, time.UTC)
	batch := domain.PredictionBatch{
		AnalysisID: "analysis-1",
		Predictions: []domain.ArrivalPrediction{
			{StormID: "kamchatka_20251008_001", EstimatedHeightFt: 6.5},
			{StormID: "aleutian_20251008_002", EstimatedHeightFt: 3.1},
		},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(batch)
	require.NoError(t, err)

	assert.Equal(t, []byte("analysis-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"storm_id":"kamchatka_20251008_001"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "prediction_count", msg.Headers[0].Key)
	assert.Equal(t, []byte("2"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
