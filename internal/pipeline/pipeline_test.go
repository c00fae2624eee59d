package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.RawAnalysis
	err     error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.batches) == 0 {
		// block until context cancelled to simulate waiting for messages
		m.mu.Unlock()
		<-ctx.Done()
		m.mu.Lock()
		return nil, ctx.Err()
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return batch, nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawAnalysis) (domain.PredictionBatch, error) {
	if m.err != nil {
		return domain.PredictionBatch{}, m.err
	}
	return domain.PredictionBatch{
		AnalysisID:  string(raw.Key),
		Predictions: []domain.ArrivalPrediction{{StormID: "kamchatka_20251008_001"}},
	}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.PredictionBatch
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, batches []domain.PredictionBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, batches...)
	return nil
}

func (m *mockLoader) all() []domain.PredictionBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PredictionBatch(nil), m.loaded...)
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func rawWithKey(key string) domain.RawAnalysis {
	return domain.RawAnalysis{Key: []byte(key), Value: []byte(`{}`)}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawAnalysis{{rawWithKey("analysis-1"), rawWithKey("analysis-2")}}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	loaded := ldr.all()
	require.Len(t, loaded, 2)
	assert.Equal(t, "analysis-1", loaded[0].AnalysisID)
	assert.Equal(t, "analysis-2", loaded[1].AnalysisID)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.all())
}

func TestPipeline_Run_TransformErrorSkipsMessage(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawAnalysis{{rawWithKey("analysis-1")}}}
	tfm := &mockTransformer{err: errors.New("bad document")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.all())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var committed atomic.Bool

	raw := rawWithKey("analysis-1")
	raw.Topic = "marine-analysis-text"
	raw.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawAnalysis{{raw}}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, committed.Load())
}

func TestPipeline_Run_FailedTransformStillCommits(t *testing.T) {
	var committed atomic.Bool

	raw := rawWithKey("analysis-1")
	raw.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawAnalysis{{raw}}}
	tfm := &mockTransformer{err: errors.New("bad document")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, committed.Load())
	assert.Empty(t, ldr.all())
}
