// Package collector fetches daily closing prices and assembles the
// trailing price window the estimator consumes.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// ErrInsufficientData means the provider returned fewer closes than a
// full window needs.
var ErrInsufficientData = errors.New("insufficient price history")

// MockFetcher returns canned closes, for tests and the mock provider.
// With no Closes set it generates a gently rising series.
type MockFetcher struct {
	Closes []float64
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, _ string, days int) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Closes != nil {
		return m.Closes, nil
	}
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = 100 * (1 + float64(i-days/2)*0.001)
	}
	return closes, nil
}

// Collector wraps a Fetcher with retry and window assembly.
type Collector struct {
	Fetcher    Fetcher
	Symbol     string
	MaxRetries int
}

func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		Symbol:     symbol,
		MaxRetries: 3,
	}
}

// Collect fetches recent closes and trims them to the trailing window.
func (c *Collector) Collect(ctx context.Context) (model.PriceWindow, error) {
	closes, err := c.fetchWithRetry(ctx, model.WindowSize)
	if err != nil {
		return nil, err
	}
	if len(closes) < model.WindowSize {
		return nil, fmt.Errorf("%w: got %d closes for %s, need %d",
			ErrInsufficientData, len(closes), c.Symbol, model.WindowSize)
	}
	return model.PriceWindow(closes[len(closes)-model.WindowSize:]), nil
}

func (c *Collector) fetchWithRetry(ctx context.Context, days int) ([]float64, error) {
	var lastErr error
	for i := 0; i <= c.MaxRetries; i++ {
		closes, err := c.Fetcher.FetchDailyCloses(ctx, c.Symbol, days)
		if err == nil {
			return closes, nil
		}
		lastErr = err

		backoff := time.Duration(1<<uint(i)) * time.Second
		log.Warnf("fetch failed (attempt %d/%d): %v, retrying in %v",
			i+1, c.MaxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("all %d retries exhausted: %w", c.MaxRetries+1, lastErr)
}
