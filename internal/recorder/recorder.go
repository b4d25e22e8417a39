package recorder

import "TrendSentinel/internal/model"

// Recorder persists prediction history for later analysis.
type Recorder interface {
	RecordPrediction(rec *model.PredictionRecord) error
	RecentPredictions(limit int) ([]model.PredictionRecord, error)
	Close() error
}
