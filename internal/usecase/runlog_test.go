package usecase

import (
	"testing"
	"time"

	"toggl-tagger/internal/domain"
)

func TestRunLog_Counters(t *testing.T) {
	l := NewRunLog(time.Unix(0, 0).UTC(), "2025-08-29", 5)
	l.Append(domain.LogRecord{Status: domain.OutcomeSuccess})
	l.Append(domain.LogRecord{Status: domain.OutcomeDryRun})
	l.Append(domain.LogRecord{Status: domain.OutcomeFailed})
	l.Append(domain.LogRecord{Status: domain.OutcomeNetworkError})

	got := l.Counters()
	want := domain.Counters{TotalEntries: 5, Processed: 4, Success: 2, Failed: 2}
	if got != want {
		t.Fatalf("counters = %+v, want %+v", got, want)
	}
}

func TestRunLog_FinalizePreservesOrder(t *testing.T) {
	l := NewRunLog(time.Unix(0, 0).UTC(), "2025-08-29", 2)
	l.Append(domain.LogRecord{Status: domain.OutcomeSuccess, EntryID: 1})
	l.Append(domain.LogRecord{Status: domain.OutcomeFailed, EntryID: 2})

	run := l.Finalize()
	if run.TargetDate != "2025-08-29" || len(run.Changes) != 2 {
		t.Fatalf("run = %+v", run)
	}
	if run.Changes[0].EntryID != 1 || run.Changes[1].EntryID != 2 {
		t.Fatal("records out of arrival order")
	}
}
