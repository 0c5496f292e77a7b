// Package mysql mirrors finalized run summaries into MySQL so audit
// history can be queried and dashboarded. The file sink stays the
// system of record; this sink is best-effort.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"toggl-tagger/internal/domain"
)

// Sink implements ports.AuditSink on a MySQL connection.
type Sink struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSink opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewSink(ctx context.Context, dsn string, log *slog.Logger) (*Sink, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Sink{db: db, log: log}, nil
}

// WriteRunSummary upserts one run row and its records. Re-writing the
// same run is idempotent: rows are keyed by run id and entry id.
func (s *Sink) WriteRunSummary(ctx context.Context, run domain.RunSummary) error {
	runID := run.TargetDate + "_" + run.ExecutionDate.Format("20060102_150405")

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const runQ = `
INSERT INTO tagger_runs
  (id, executed_at, target_date, total_entries, processed, success, failed)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  total_entries=VALUES(total_entries),
  processed=VALUES(processed),
  success=VALUES(success),
  failed=VALUES(failed);
`
	if _, err := tx.ExecContext(ctx, runQ,
		runID,
		run.ExecutionDate.UTC(),
		run.TargetDate,
		run.Summary.TotalEntries,
		run.Summary.Processed,
		run.Summary.Success,
		run.Summary.Failed,
	); err != nil {
		tx.Rollback()
		return err
	}

	const recQ = `
INSERT INTO tagger_run_records
  (run_id, entry_id, recorded_at, status, project_name, description, tags, error_code, error_reason)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status),
  tags=VALUES(tags),
  error_code=VALUES(error_code),
  error_reason=VALUES(error_reason);
`
	stmt, err := tx.PrepareContext(ctx, recQ)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range run.Changes {
		tags := rec.TagsAdded
		if len(tags) == 0 {
			tags = rec.TagsToAdd
		}
		var errCode interface{}
		if rec.ErrorCode != 0 {
			errCode = rec.ErrorCode
		}
		reason := rec.ErrorReason
		if reason == "" {
			reason = rec.Error
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			rec.EntryID,
			rec.Timestamp.UTC(),
			string(rec.Status),
			rec.ProjectName,
			rec.Description,
			strings.Join(tags, ","),
			errCode,
			reason,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql audit mirror updated",
		slog.String("run", runID),
		slog.Int("records", len(run.Changes)))
	return nil
}

// Close closes the underlying DB.
func (s *Sink) Close() error { return s.db.Close() }
