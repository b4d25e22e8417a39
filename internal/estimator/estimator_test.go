package estimator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"TrendSentinel/internal/model"
)

const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func TestDifferences_LinearWindow(t *testing.T) {
	window := model.PriceWindow{100, 101, 102, 103, 104, 105, 106}
	diffs, err := Differences(window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(diffs.Forward, 1) {
		t.Errorf("forward: expected 1, got %v", diffs.Forward)
	}
	if !almostEqual(diffs.Backward, 1) {
		t.Errorf("backward: expected 1, got %v", diffs.Backward)
	}
	if !almostEqual(diffs.Central, 1) {
		t.Errorf("central: expected 1, got %v", diffs.Central)
	}
}

func TestDifferences_MixedWindow(t *testing.T) {
	window := model.PriceWindow{100, 102, 98, 105, 95, 110, 90}
	diffs, err := Differences(window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(diffs.Forward, -20) {
		t.Errorf("forward: expected -20, got %v", diffs.Forward)
	}
	if !almostEqual(diffs.Backward, 2) {
		t.Errorf("backward: expected 2, got %v", diffs.Backward)
	}
	if !almostEqual(diffs.Central, -10.0/6.0) {
		t.Errorf("central: expected %v, got %v", -10.0/6.0, diffs.Central)
	}
}

func TestDifferences_WrongLength(t *testing.T) {
	windows := []model.PriceWindow{
		{100, 101, 102, 103, 104, 105},
		{100, 101, 102, 103, 104, 105, 106, 107},
		{},
		nil,
	}
	for _, window := range windows {
		_, err := Differences(window)
		if !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("len %d: expected ErrInvalidWindow, got %v", len(window), err)
		}
	}
}

func TestDifferences_NonFinite(t *testing.T) {
	window := model.PriceWindow{100, 101, 102, math.NaN(), 104, 105, 106}
	_, err := Differences(window)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for NaN, got %v", err)
	}
	if !strings.Contains(err.Error(), "index 3") {
		t.Errorf("error should name the bad index: %v", err)
	}

	window[3] = math.Inf(1)
	if _, err := Differences(window); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow for +Inf, got %v", err)
	}
	window[3] = math.Inf(-1)
	if _, err := Differences(window); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow for -Inf, got %v", err)
	}
}

func TestWeightedSlope_AgreeingSlopesIgnoreWeights(t *testing.T) {
	diffs := model.DifferenceSet{Forward: 2.5, Backward: 2.5, Central: 2.5}
	weights := []Weights{
		{Forward: 1, Backward: 1, Central: 1},
		{Forward: 0.6, Backward: 0.3, Central: 0.1},
		{Forward: 0, Backward: 0, Central: 1},
		{Forward: 5, Backward: 0, Central: 0},
	}
	for _, w := range weights {
		if got := WeightedSlope(diffs, w); !almostEqual(got, 2.5) {
			t.Errorf("weights %+v: expected 2.5, got %v", w, got)
		}
	}
}

func TestWeightedSlope_Normalization(t *testing.T) {
	diffs := model.DifferenceSet{Forward: 3, Backward: 1, Central: -1}
	a := WeightedSlope(diffs, Weights{Forward: 0.6, Backward: 0.3, Central: 0.1})
	b := WeightedSlope(diffs, Weights{Forward: 6, Backward: 3, Central: 1})
	if !almostEqual(a, b) {
		t.Errorf("scaled weights should agree: %v vs %v", a, b)
	}
	want := 0.6*3 + 0.3*1 + 0.1*(-1)
	if !almostEqual(a, want) {
		t.Errorf("expected %v, got %v", want, a)
	}
}

func TestWeightedSlope_ZeroSumFallsBack(t *testing.T) {
	diffs := model.DifferenceSet{Forward: 1, Backward: 1, Central: 1}
	if got := WeightedSlope(diffs, Weights{}); !almostEqual(got, 1) {
		t.Errorf("expected default weights for zero sum, got %v", got)
	}
}

func TestConfidence_Range(t *testing.T) {
	windows := []model.PriceWindow{
		{100, 100, 100, 100, 100, 100, 100},
		{100, 101, 102, 103, 104, 105, 106},
		{100, 102, 98, 105, 95, 110, 90},
		{120, 118, 115, 113, 110, 108, 105},
		{100, 150, 80, 160, 70, 170, 60},
	}
	for _, w := range windows {
		c, err := Confidence(w, 10)
		if err != nil {
			t.Fatalf("window %v: %v", w, err)
		}
		if c < 0 || c > 100 {
			t.Errorf("window %v: confidence %v out of [0,100]", w, c)
		}
	}
}

func TestConfidence_ZeroVariance(t *testing.T) {
	flat := model.PriceWindow{100, 100, 100, 100, 100, 100, 100}
	c, err := Confidence(flat, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != 100 {
		t.Errorf("flat window: expected exactly 100, got %v", c)
	}

	// Constant daily step also has zero change variance.
	linear := model.PriceWindow{100, 101, 102, 103, 104, 105, 106}
	c, err = Confidence(linear, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != 100 {
		t.Errorf("linear window: expected exactly 100, got %v", c)
	}
}

func TestConfidence_MonotoneInVariance(t *testing.T) {
	// Mean daily change is 0 for every window; spread increases.
	windows := []model.PriceWindow{
		{100, 100, 100, 100, 100, 100, 100},
		{100, 101, 100, 101, 100, 101, 100},
		{100, 102, 100, 102, 100, 102, 100},
		{100, 103, 100, 103, 100, 103, 100},
		{100, 105, 100, 105, 100, 105, 100},
	}
	prev := math.Inf(1)
	for _, w := range windows {
		c, err := Confidence(w, 10)
		if err != nil {
			t.Fatalf("window %v: %v", w, err)
		}
		if c > prev+tol {
			t.Errorf("confidence rose with variance: %v then %v (window %v)", prev, c, w)
		}
		prev = c
	}
}

func TestConfidence_CapScalesResult(t *testing.T) {
	w := model.PriceWindow{100, 101, 100, 101, 100, 101, 100} // change variance = 1
	loose, err := Confidence(w, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strict, err := Confidence(w, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loose <= strict {
		t.Errorf("larger cap should not lower confidence: cap=100 gave %v, cap=2 gave %v", loose, strict)
	}
	if !almostEqual(loose, 99) {
		t.Errorf("cap=100: expected 99, got %v", loose)
	}
	if !almostEqual(strict, 50) {
		t.Errorf("cap=2: expected 50, got %v", strict)
	}
}

func TestPredict_LinearScenario(t *testing.T) {
	window := model.PriceWindow{100, 101, 102, 103, 104, 105, 106}
	pred, err := Predict(window, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(pred.Predicted, 107) {
		t.Errorf("predicted: expected 107, got %v", pred.Predicted)
	}
	if !almostEqual(pred.Confidence, 100) {
		t.Errorf("confidence: expected 100, got %v", pred.Confidence)
	}
	if !almostEqual(pred.Slope, 1) {
		t.Errorf("slope: expected 1, got %v", pred.Slope)
	}
}

func TestPredict_IdenticalPrices(t *testing.T) {
	window := model.PriceWindow{55, 55, 55, 55, 55, 55, 55}
	pred, err := Predict(window, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(pred.Predicted, 55) {
		t.Errorf("predicted: expected 55, got %v", pred.Predicted)
	}
	if pred.Confidence != 100 {
		t.Errorf("confidence: expected exactly 100, got %v", pred.Confidence)
	}
	if !almostEqual(pred.Slope, 0) {
		t.Errorf("slope: expected 0, got %v", pred.Slope)
	}
}

func TestPredict_VolatileScoresBelowCalm(t *testing.T) {
	calm, err := Predict(model.PriceWindow{100, 101, 102, 103, 104, 105, 106}, DefaultParams())
	if err != nil {
		t.Fatalf("calm window: %v", err)
	}
	volatile, err := Predict(model.PriceWindow{100, 102, 98, 105, 95, 110, 90}, DefaultParams())
	if err != nil {
		t.Fatalf("volatile window: %v", err)
	}
	if volatile.Confidence >= 50 {
		t.Errorf("expected low confidence for volatile window, got %v", volatile.Confidence)
	}
	if volatile.Confidence >= calm.Confidence {
		t.Errorf("volatile confidence %v should be below calm %v", volatile.Confidence, calm.Confidence)
	}
}

func TestPredict_ConstantStepMatchesAnyWeights(t *testing.T) {
	window := model.PriceWindow{200, 203, 206, 209, 212, 215, 218}
	weights := []Weights{
		{Forward: 0.6, Backward: 0.3, Central: 0.1},
		{Forward: 1, Backward: 1, Central: 1},
		{Forward: 0, Backward: 1, Central: 0},
	}
	for _, w := range weights {
		pred, err := Predict(window, Params{Weights: w, VarianceCap: 10})
		if err != nil {
			t.Fatalf("weights %+v: %v", w, err)
		}
		if !almostEqual(pred.Slope, 3) {
			t.Errorf("weights %+v: expected slope 3, got %v", w, pred.Slope)
		}
		if !almostEqual(pred.Predicted, 221) {
			t.Errorf("weights %+v: expected 221, got %v", w, pred.Predicted)
		}
	}
}

func TestPredict_PropagatesValidation(t *testing.T) {
	if _, err := Predict(model.PriceWindow{1, 2, 3}, DefaultParams()); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestChanges(t *testing.T) {
	got := Changes(model.PriceWindow{100, 102, 98, 105, 95, 110, 90})
	want := []float64{2, -4, 7, -10, 15, -20}
	if len(got) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("change %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if Changes(model.PriceWindow{42}) != nil {
		t.Error("expected nil changes for a single close")
	}
}

func TestVariance(t *testing.T) {
	changes := Changes(model.PriceWindow{100, 102, 98, 105, 95, 110, 90})
	if v := Variance(changes); math.Abs(v-129.5556) > 0.001 {
		t.Errorf("expected variance near 129.5556, got %v", v)
	}
	if v := Variance([]float64{3, 3, 3}); v != 0 {
		t.Errorf("expected zero variance, got %v", v)
	}
	if v := Variance(nil); v != 0 {
		t.Errorf("expected zero variance for empty input, got %v", v)
	}
}
