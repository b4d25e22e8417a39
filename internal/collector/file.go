package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileFetcher reads daily closes from a local CSV file. Each row carries
// the close in its last column; a header row is tolerated.
type FileFetcher struct {
	Path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) FetchDailyCloses(_ context.Context, _ string, days int) ([]float64, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	closes := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		field := strings.TrimSpace(row[len(row)-1])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("csv row %d: bad close %q", i+1, field)
		}
		closes = append(closes, v)
	}

	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}
