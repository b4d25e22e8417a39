package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/estimator"
	"TrendSentinel/internal/history"
	"TrendSentinel/internal/model"
)

type captureRecorder struct {
	records []*model.PredictionRecord
}

func (c *captureRecorder) RecordPrediction(rec *model.PredictionRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRecorder) RecentPredictions(limit int) ([]model.PredictionRecord, error) {
	out := make([]model.PredictionRecord, 0, len(c.records))
	for i := len(c.records) - 1; i >= 0; i-- {
		out = append(out, *c.records[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *captureRecorder) Close() error { return nil }

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, opts Options) (*Scheduler, *captureRecorder, *history.Tracker) {
	t.Helper()

	col := collector.NewCollector(fetcher, "AAPL")
	col.MaxRetries = 0

	tracker, err := history.NewTracker(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	rec := &captureRecorder{}
	return NewScheduler(context.Background(), col, tracker, rec, opts), rec, tracker
}

func TestRunPredictionNow_RecordsAndMarks(t *testing.T) {
	fetcher := &collector.MockFetcher{Closes: []float64{100, 101, 102, 103, 104, 105, 106}}
	s, rec, tracker := newTestScheduler(t, fetcher, Options{
		Params:  estimator.DefaultParams(),
		NoChart: true,
	})

	s.RunPredictionNow()

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	assert.Equal(t, "AAPL", got.Symbol)
	assert.InDelta(t, 107.0, got.Predicted, 1e-9)
	assert.InDelta(t, 100.0, got.Confidence, 1e-9)
	assert.Equal(t, model.PriceWindow{100, 101, 102, 103, 104, 105, 106}, got.Closes)

	state := tracker.State()
	assert.Equal(t, 1, state.TotalRuns)
	assert.Equal(t, "AAPL", state.LastSymbol)
	assert.Equal(t, []float64{100}, state.RecentConfidences)
}

func TestRunPredictionNow_CollectFailureLeavesNoRecord(t *testing.T) {
	fetcher := &collector.MockFetcher{Err: errors.New("provider down")}
	s, rec, tracker := newTestScheduler(t, fetcher, Options{
		Params:  estimator.DefaultParams(),
		NoChart: true,
	})

	s.RunPredictionNow()

	assert.Empty(t, rec.records)
	assert.Zero(t, tracker.State().TotalRuns)
}

func TestUpdateParams_AffectsNextRun(t *testing.T) {
	fetcher := &collector.MockFetcher{Closes: []float64{100, 101, 102, 103, 104, 105, 110}}
	s, rec, _ := newTestScheduler(t, fetcher, Options{
		Params:  estimator.DefaultParams(),
		NoChart: true,
	})

	s.RunPredictionNow()
	require.Len(t, rec.records, 1)
	assert.InDelta(t, 113.4667, rec.records[0].Predicted, 1e-3)

	s.UpdateParams(estimator.Params{
		Weights:     estimator.Weights{Forward: 0, Backward: 1, Central: 0},
		VarianceCap: 10,
	})
	s.RunPredictionNow()
	require.Len(t, rec.records, 2)
	assert.InDelta(t, 111.0, rec.records[1].Predicted, 1e-9)
}

func TestRunDigestNow_EmptyHistory(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, Options{
		Params:  estimator.DefaultParams(),
		NoChart: true,
	})

	s.RunDigestNow()
}

func TestRegisterAll_BadExpr(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, Options{
		Params: estimator.DefaultParams(),
	})

	err := s.RegisterAll("not a cron expr", "0 0 18 * * 5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register daily task")
}
