// Package render produces the textual report, the weekly digest and the
// price chart for a prediction.
package render

import (
	"fmt"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// Report formats a single prediction as a human-readable summary.
func Report(symbol string, window model.PriceWindow, pred *model.Prediction) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 TrendSentinel | %s | %s\n", symbol, time.Now().Format("2006-01-02 15:04")))

	closes := make([]string, len(window))
	for i, v := range window {
		closes[i] = fmt.Sprintf("%.2f", v)
	}
	b.WriteString(fmt.Sprintf("📅 Closes (%dd): %s\n", len(window), strings.Join(closes, ", ")))

	b.WriteString(fmt.Sprintf("🔮 Predicted Next Price: $%.2f\n", pred.Predicted))
	b.WriteString(fmt.Sprintf("🎯 Confidence Level: %.1f%%\n", pred.Confidence))
	b.WriteString(fmt.Sprintf("➡ Forward Slope: %.2f\n", pred.Diffs.Forward))
	b.WriteString(fmt.Sprintf("⬅ Backward Slope: %.2f\n", pred.Diffs.Backward))
	b.WriteString(fmt.Sprintf("⚖ Central Slope: %.2f\n", pred.Diffs.Central))
	b.WriteString(fmt.Sprintf("📈 Weighted Slope: %+.2f", pred.Slope))

	return b.String()
}

// Digest summarizes recent predictions for the weekly report.
func Digest(records []model.PredictionRecord, state model.RunState) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 TrendSentinel Weekly Digest | %s\n", time.Now().Format("2006-01-02")))
	if len(records) == 0 {
		b.WriteString("No predictions recorded yet.")
		return b.String()
	}

	// records arrive newest first
	latest := records[0]
	b.WriteString(fmt.Sprintf("Predictions recorded: %d\n", len(records)))
	b.WriteString(fmt.Sprintf("Latest: %s predicted $%.2f (%.1f%% confidence) on %s\n",
		latest.Symbol, latest.Predicted, latest.Confidence, latest.Time.Format("2006-01-02")))

	lo, hi := latest.Confidence, latest.Confidence
	for _, r := range records[1:] {
		if r.Confidence < lo {
			lo = r.Confidence
		}
		if r.Confidence > hi {
			hi = r.Confidence
		}
	}
	b.WriteString(fmt.Sprintf("Confidence range: %.1f%% - %.1f%%\n", lo, hi))
	b.WriteString(fmt.Sprintf("Total runs: %d | avg recent confidence: %.1f%%",
		state.TotalRuns, mean(state.RecentConfidences)))

	return b.String()
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
