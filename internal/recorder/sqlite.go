package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"TrendSentinel/internal/model"
)

// SQLiteRecorder persists prediction history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the daemon writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			day1            REAL,
			day2            REAL,
			day3            REAL,
			day4            REAL,
			day5            REAL,
			day6            REAL,
			day7            REAL,
			forward_slope   REAL,
			backward_slope  REAL,
			central_slope   REAL,
			weighted_slope  REAL,
			predicted_price REAL,
			confidence      REAL,
			chart_path      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_ts ON predictions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPrediction(rec *model.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var days [model.WindowSize]float64
	copy(days[:], rec.Closes)

	_, err := r.db.Exec(`INSERT INTO predictions
		(timestamp, symbol, day1, day2, day3, day4, day5, day6, day7,
		 forward_slope, backward_slope, central_slope, weighted_slope,
		 predicted_price, confidence, chart_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), rec.Symbol,
		days[0], days[1], days[2], days[3], days[4], days[5], days[6],
		rec.Forward, rec.Backward, rec.Central, rec.Slope,
		rec.Predicted, rec.Confidence, rec.ChartPath,
	)
	return err
}

func (r *SQLiteRecorder) RecentPredictions(limit int) ([]model.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`SELECT timestamp, symbol,
		day1, day2, day3, day4, day5, day6, day7,
		forward_slope, backward_slope, central_slope, weighted_slope,
		predicted_price, confidence, chart_path
		FROM predictions ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var records []model.PredictionRecord
	for rows.Next() {
		var (
			ts   int64
			rec  model.PredictionRecord
			days [model.WindowSize]float64
		)
		if err := rows.Scan(&ts, &rec.Symbol,
			&days[0], &days[1], &days[2], &days[3], &days[4], &days[5], &days[6],
			&rec.Forward, &rec.Backward, &rec.Central, &rec.Slope,
			&rec.Predicted, &rec.Confidence, &rec.ChartPath,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		rec.Time = time.Unix(ts, 0)
		rec.Closes = model.PriceWindow(days[:])
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
