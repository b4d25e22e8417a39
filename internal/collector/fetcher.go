package collector

import "context"

// Fetcher defines the interface for fetching daily closing prices.
type Fetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
	Name() string
}
