// Package estimator turns a week of closing prices into a next-day price
// estimate using finite-difference slope approximations.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"TrendSentinel/internal/model"
)

// ErrInvalidWindow reports a price window that is not exactly
// model.WindowSize finite values.
var ErrInvalidWindow = errors.New("invalid price window")

// Weights control the contribution of each difference to the combined
// slope. They are normalized at combination time, so any non-negative
// triple with a positive sum is accepted.
type Weights struct {
	Forward  float64
	Backward float64
	Central  float64
}

// Params bundles the tunables of a prediction run.
type Params struct {
	Weights     Weights
	VarianceCap float64
}

// DefaultParams returns the stock tuning: slopes weighted toward recent
// movement, and a variance cap of 10 for the confidence mapping.
func DefaultParams() Params {
	return Params{
		Weights:     Weights{Forward: 0.6, Backward: 0.3, Central: 0.1},
		VarianceCap: 10,
	}
}

// ValidateWindow checks the window length and that every entry is finite.
func ValidateWindow(window model.PriceWindow) error {
	if len(window) != model.WindowSize {
		return fmt.Errorf("%w: expected %d closes, got %d", ErrInvalidWindow, model.WindowSize, len(window))
	}
	for i, p := range window {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: close at index %d is not finite (%v)", ErrInvalidWindow, i, p)
		}
	}
	return nil
}

// Differences derives the three slope estimates from the window.
//
// Forward uses the last two closes and backward the first two. Central is
// the average rate across the full window, (p[6]-p[0])/6, rather than a
// single-point centered difference: it uses every observation and agrees
// with the other two on linear data.
func Differences(window model.PriceWindow) (model.DifferenceSet, error) {
	if err := ValidateWindow(window); err != nil {
		return model.DifferenceSet{}, err
	}
	n := len(window)
	return model.DifferenceSet{
		Forward:  window[n-1] - window[n-2],
		Backward: window[1] - window[0],
		Central:  (window[n-1] - window[0]) / float64(n-1),
	}, nil
}

// WeightedSlope combines the three differences into a single slope using
// the given weights, normalized to sum to 1. A zero or negative weight
// sum falls back to the defaults.
func WeightedSlope(diffs model.DifferenceSet, w Weights) float64 {
	sum := w.Forward + w.Backward + w.Central
	if sum <= 0 {
		w = DefaultParams().Weights
		sum = w.Forward + w.Backward + w.Central
	}
	return (diffs.Forward*w.Forward + diffs.Backward*w.Backward + diffs.Central*w.Central) / sum
}

// Confidence maps the variance of day-over-day changes to a percentage.
// Calm windows score near 100, erratic ones near 0. Zero variance returns
// exactly 100, never a division fault.
func Confidence(window model.PriceWindow, varianceCap float64) (float64, error) {
	if err := ValidateWindow(window); err != nil {
		return 0, err
	}
	if varianceCap <= 0 {
		varianceCap = DefaultParams().VarianceCap
	}
	v := Variance(Changes(window))
	if v == 0 {
		return 100, nil
	}
	c := 100 * (1 - v/varianceCap)
	if c < 0 {
		c = 0
	} else if c > 100 {
		c = 100
	}
	return c, nil
}

// Predict runs the full estimation for one window: differences, weighted
// slope, confidence, and the projected next close. It is a pure function;
// all failures come from window validation.
func Predict(window model.PriceWindow, p Params) (*model.Prediction, error) {
	diffs, err := Differences(window)
	if err != nil {
		return nil, err
	}
	slope := WeightedSlope(diffs, p.Weights)
	conf, err := Confidence(window, p.VarianceCap)
	if err != nil {
		return nil, err
	}
	return &model.Prediction{
		Predicted:  window.Last() + slope,
		Confidence: conf,
		Slope:      slope,
		Diffs:      diffs,
	}, nil
}
