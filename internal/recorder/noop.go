package recorder

import "TrendSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPrediction(_ *model.PredictionRecord) error { return nil }

func (n *NoopRecorder) RecentPredictions(_ int) ([]model.PredictionRecord, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
