package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"toggl-tagger/internal/domain"
)

func testSummary(exec time.Time) domain.RunSummary {
	return domain.RunSummary{
		ExecutionDate: exec,
		TargetDate:    "2025-08-29",
		Summary:       domain.Counters{TotalEntries: 3, Processed: 1, Success: 1},
		Changes: []domain.LogRecord{{
			Timestamp:   exec,
			Status:      domain.OutcomeSuccess,
			EntryID:     9,
			ProjectName: "Acme",
			Description: "Dev work",
			TagsAdded:   []string{"client-acme", "billable"},
		}},
	}
}

func TestWriteRunSummary(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	exec := time.Date(2025, 8, 30, 8, 15, 0, 0, time.UTC)
	if err := sink.WriteRunSummary(context.Background(), testSummary(exec)); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(dir, "toggl_tag_log_2025-08-29_20250830_081500.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	var got domain.RunSummary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TargetDate != "2025-08-29" || got.Summary.Success != 1 || len(got.Changes) != 1 {
		t.Fatalf("round trip = %+v", got)
	}
	if got.Changes[0].Status != domain.OutcomeSuccess {
		t.Fatalf("record = %+v", got.Changes[0])
	}
}

func TestWriteRunSummary_RepeatedRunsDoNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	first := time.Date(2025, 8, 30, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)
	for _, exec := range []time.Time{first, second} {
		if err := sink.WriteRunSummary(context.Background(), testSummary(exec)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2 distinct audit files", len(files))
	}
}

func TestWriteRunSummary_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	sink := &FileSink{Dir: dir, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := sink.WriteRunSummary(context.Background(), testSummary(time.Now())); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestWriteRunSummary_NoStrayTempFiles(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := sink.WriteRunSummary(context.Background(), testSummary(time.Now())); err != nil {
		t.Fatalf("write: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ".audit-*"))
	if len(matches) != 0 {
		t.Fatalf("stray temp files: %v", matches)
	}
}
