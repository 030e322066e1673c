package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the pass audit log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			input          TEXT,
			symbol         TEXT,
			interval       TEXT,
			bars           INTEGER,
			latest_close   REAL,
			latest_rsi     REAL,
			zone           TEXT,
			trend          TEXT,
			forecast_slope REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol)`,

		`CREATE TABLE IF NOT EXISTS failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			input     TEXT,
			symbol    TEXT,
			outcome   TEXT,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON failures(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			chat_id   TEXT,
			symbol    TEXT,
			kind      TEXT,
			from_zone TEXT,
			to_zone   TEXT,
			rsi       REAL,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(evt *AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, source, input, symbol, interval, bars,
		 latest_close, latest_rsi, zone, trend, forecast_slope)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.Source, evt.Input, evt.Symbol, evt.Interval, evt.Bars,
		evt.LatestClose, evt.LatestRSI, evt.Zone, evt.Trend, evt.Slope,
	)
	return err
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO failures
		(timestamp, source, input, symbol, outcome, reason)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Source, evt.Input, evt.Symbol, evt.Outcome, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts
		(timestamp, chat_id, symbol, kind, from_zone, to_zone, rsi, price)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.ChatID, evt.Symbol, evt.Kind, evt.FromZone, evt.ToZone, evt.RSI, evt.Price,
	)
	return err
}

// RecentAnalyses returns the newest passes first.
func (r *SQLiteRecorder) RecentAnalyses(limit int) ([]AnalysisEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, source, input, symbol, interval, bars,
		latest_close, latest_rsi, zone, trend, forecast_slope
		FROM analyses ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisEvent
	for rows.Next() {
		var evt AnalysisEvent
		var ts int64
		if err := rows.Scan(&ts, &evt.Source, &evt.Input, &evt.Symbol, &evt.Interval, &evt.Bars,
			&evt.LatestClose, &evt.LatestRSI, &evt.Zone, &evt.Trend, &evt.Slope); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		evt.Time = time.Unix(ts, 0)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
