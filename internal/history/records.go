package history

import (
	"context"
	"fmt"
	"time"

	"sermonbench/internal/metrics"
	"sermonbench/internal/scenario"
)

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID                string
	Scenario          string
	Pattern           string
	StartedAt         time.Time
	EndedAt           time.Time
	TotalFiles        int
	Successful        int
	Failed            int
	SuccessRate       float64
	TotalBytes        int64
	AvgThroughputMBps float64
	P95Duration       time.Duration
}

// SaveRun records a finished batch and its aggregation in one transaction.
func (s *Store) SaveRun(ctx context.Context, run scenario.BatchRun, m metrics.Metrics) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, scenario, pattern, started_at, ended_at,
			total_files, successful, failed, success_rate,
			total_bytes, avg_throughput_mbps, p95_duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Scenario.Name,
		run.Scenario.Pattern,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		m.TotalFiles,
		m.SuccessfulUploads,
		m.FailedUploads,
		m.SuccessRate,
		m.TotalBytes,
		m.AvgThroughputMBps,
		m.P95Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, r := range run.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO upload_results (
				run_id, result_id, file_name, file_size, method,
				success, duration_ms, error, throughput_mbps,
				api_response_ms, upload_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			r.ID,
			r.FileName,
			r.FileSize,
			r.Method,
			r.Success,
			r.Duration.Milliseconds(),
			r.Error,
			r.ThroughputMBps,
			r.APIResponseTime.Milliseconds(),
			r.UploadTime.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT id, scenario, pattern, started_at, ended_at,
			total_files, successful, failed, success_rate,
			total_bytes, avg_throughput_mbps, p95_duration_ms
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			summary            RunSummary
			startedAt, endedAt string
			p95ms              int64
		)
		if err := rows.Scan(
			&summary.ID, &summary.Scenario, &summary.Pattern,
			&startedAt, &endedAt,
			&summary.TotalFiles, &summary.Successful, &summary.Failed,
			&summary.SuccessRate, &summary.TotalBytes,
			&summary.AvgThroughputMBps, &p95ms,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", summary.ID, err)
		}
		if summary.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at for %s: %w", summary.ID, err)
		}
		summary.P95Duration = time.Duration(p95ms) * time.Millisecond
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// RunResults returns the stored upload attempts for one run, in insertion
// order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]scenario.UploadResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT result_id, file_name, file_size, method, success,
			duration_ms, error, throughput_mbps, api_response_ms, upload_ms
		FROM upload_results WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results for %s: %w", runID, err)
	}
	defer rows.Close()

	var results []scenario.UploadResult
	for rows.Next() {
		var (
			r                       scenario.UploadResult
			durationMS, apiMS, upMS int64
		)
		if err := rows.Scan(
			&r.ID, &r.FileName, &r.FileSize, &r.Method, &r.Success,
			&durationMS, &r.Error, &r.ThroughputMBps, &apiMS, &upMS,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.APIResponseTime = time.Duration(apiMS) * time.Millisecond
		r.UploadTime = time.Duration(upMS) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}
