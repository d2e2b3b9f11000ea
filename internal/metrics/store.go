package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExecutionMetric records metadata for a single model invocation.
type ExecutionMetric struct {
	AgentName string
	Model     string
	LatencyMS int64
	// Fallback marks invocations where the result was replaced by a
	// deterministic default (e.g. extraction parse failure).
	Fallback  bool
	Timestamp time.Time
}

// Recorder accepts execution metrics. Recording is best-effort; callers must
// not fail their own operation on a recording error.
type Recorder interface {
	Record(ctx context.Context, m ExecutionMetric) error
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	fallback := 0
	if m.Fallback {
		fallback = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_metrics (agent_name, model, latency_ms, fallback, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		m.AgentName, m.Model, m.LatencyMS, fallback, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// DailyUsage represents invocation totals for a single day.
type DailyUsage struct {
	Date       string
	Executions int
	Fallbacks  int
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(timestamp) AS day, COUNT(*), SUM(fallback)
		 FROM execution_metrics
		 WHERE timestamp >= ?
		 GROUP BY day ORDER BY day`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var fallbacks sql.NullInt64
		if err := rows.Scan(&u.Date, &u.Executions, &fallbacks); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		if fallbacks.Valid {
			u.Fallbacks = int(fallbacks.Int64)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and returns
// the number removed.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM execution_metrics WHERE timestamp < ?`, threshold,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
