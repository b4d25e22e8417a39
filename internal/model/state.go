package model

import "time"

// RunState tracks prediction runs across restarts.
type RunState struct {
	LastRunAt         time.Time `json:"last_run_at"`
	LastSymbol        string    `json:"last_symbol"`
	LastPredicted     float64   `json:"last_predicted"`
	LastConfidence    float64   `json:"last_confidence"`
	RecentConfidences []float64 `json:"recent_confidences"`
	TotalRuns         int       `json:"total_runs"`
	UpdatedAt         time.Time `json:"updated_at"`
}
