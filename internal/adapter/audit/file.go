// Package audit persists finalized run summaries as write-once JSON
// files, one per processed date per run.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"toggl-tagger/internal/domain"
)

// FileSink writes each run summary to
// <dir>/toggl_tag_log_<target-date>_<exec-timestamp>.json. The execution
// timestamp in the name keeps repeated runs for the same date from
// overwriting each other.
type FileSink struct {
	Dir string
	Log *slog.Logger
}

func (s *FileSink) WriteRunSummary(ctx context.Context, run domain.RunSummary) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	name := fmt.Sprintf("toggl_tag_log_%s_%s.json", run.TargetDate, run.ExecutionDate.Format("20060102_150405"))
	path := filepath.Join(s.Dir, name)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}

	// Stage in the same directory and rename, so a partially written
	// audit file is never observable.
	tmp, err := os.CreateTemp(s.Dir, ".audit-*.json")
	if err != nil {
		return fmt.Errorf("stage audit file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write audit file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close audit file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish audit file: %w", err)
	}

	s.Log.Info("audit log written", slog.String("path", path))
	return nil
}
