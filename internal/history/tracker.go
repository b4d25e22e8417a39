// Package history persists run state across daemon restarts.
package history

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// recentLimit caps how many confidence values the state keeps.
const recentLimit = 12

// Tracker handles run-state updates with concurrency safety.
type Tracker struct {
	mu       sync.Mutex
	state    *model.RunState
	filePath string
}

// NewTracker creates a Tracker, loading or initializing state from disk.
func NewTracker(filePath string) (*Tracker, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	t := &Tracker{state: state, filePath: filePath}
	if err := t.save(); err != nil {
		return nil, err
	}
	return t, nil
}

// State returns a copy of the current run state.
func (t *Tracker) State() model.RunState {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := *t.state
	s.RecentConfidences = append([]float64(nil), t.state.RecentConfidences...)
	return s
}

// MarkRun records a completed prediction run.
func (t *Tracker) MarkRun(symbol string, pred *model.Prediction, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.LastRunAt = at
	t.state.LastSymbol = symbol
	t.state.LastPredicted = pred.Predicted
	t.state.LastConfidence = pred.Confidence
	t.state.TotalRuns++

	t.state.RecentConfidences = append(t.state.RecentConfidences, pred.Confidence)
	if len(t.state.RecentConfidences) > recentLimit {
		t.state.RecentConfidences = t.state.RecentConfidences[len(t.state.RecentConfidences)-recentLimit:]
	}

	if err := t.save(); err != nil {
		log.Errorf("failed to save run state: %v", err)
	}
}

func (t *Tracker) save() error {
	return SaveState(t.filePath, t.state)
}
