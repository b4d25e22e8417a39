package model

import "time"

// DifferenceSet holds the three finite-difference slope estimates,
// in price units per day.
type DifferenceSet struct {
	Forward  float64
	Backward float64
	Central  float64
}

// Prediction is the immutable result of one estimation run.
type Prediction struct {
	Predicted  float64
	Confidence float64 // 0 ~ 100
	Slope      float64 // weighted slope applied to the last close
	Diffs      DifferenceSet
}

// PredictionRecord flattens a Prediction for persistence.
type PredictionRecord struct {
	Time       time.Time
	Symbol     string
	Closes     PriceWindow
	Forward    float64
	Backward   float64
	Central    float64
	Slope      float64
	Predicted  float64
	Confidence float64
	ChartPath  string
}
