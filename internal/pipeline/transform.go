package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/stormtext"
)

// AnalysisTransformer implements Transformer: it mines storm systems out of
// one marine analysis document and propagates each to the target coastline.
type AnalysisTransformer struct {
	extractor *stormtext.Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTransformer creates an AnalysisTransformer.
func NewTransformer(extractor *stormtext.Extractor, logger *slog.Logger, metrics *observability.Metrics) *AnalysisTransformer {
	return &AnalysisTransformer{
		extractor: extractor,
		logger:    logger,
		metrics:   metrics,
	}
}

// Transform parses the analysis document, extracts storms, fills in missing
// fetch and duration estimates, and computes arrival predictions. A document
// with no detectable storms yields an empty batch rather than an error, so
// quiet forecast periods do not count as failures.
func (t *AnalysisTransformer) Transform(_ context.Context, raw domain.RawAnalysis) (domain.PredictionBatch, error) {
	var doc domain.AnalysisDocument
	if err := json.Unmarshal(raw.Value, &doc); err != nil {
		return domain.PredictionBatch{}, fmt.Errorf("parse analysis document: %w", err)
	}
	if doc.ID == "" {
		return domain.PredictionBatch{}, fmt.Errorf("analysis document missing id")
	}
	if doc.Text == "" {
		return domain.PredictionBatch{}, fmt.Errorf("analysis document %s has no text", doc.ID)
	}

	issuedAt := doc.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = raw.Timestamp
	}

	storms := t.extractor.ExtractStorms(doc.Text, issuedAt, doc.Source)
	if len(storms) == 0 {
		t.metrics.StormSectionsSkipped.Inc()
		t.logger.Info("no storms found in analysis", "analysis_id", doc.ID)
	}
	t.metrics.StormsExtracted.Add(float64(len(storms)))

	for i := range storms {
		stormtext.EstimateMissingParameters(&storms[i])
	}

	return domain.PredictionBatch{
		AnalysisID:  doc.ID,
		Predictions: t.extractor.CalculateArrivals(storms),
		ProcessedAt: domain.Clock().Now(),
	}, nil
}
