package model

import "time"

// WindowSize is the number of daily closes the estimator consumes.
const WindowSize = 7

// PriceWindow is an ordered sequence of daily closing prices, oldest first.
type PriceWindow []float64

// Last returns the most recent close in the window.
func (w PriceWindow) Last() float64 {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1]
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
