package usecase

import (
	"time"

	"toggl-tagger/internal/domain"
)

// RunLog accumulates LogRecords in arrival order for one target date and
// finalizes them into an immutable RunSummary exactly once.
type RunLog struct {
	started time.Time
	target  string
	total   int
	records []domain.LogRecord
	success int
	failed  int
}

func NewRunLog(started time.Time, targetDate string, totalEntries int) *RunLog {
	return &RunLog{started: started, target: targetDate, total: totalEntries}
}

// Append records one processed entry and bumps the counters. Dry-run
// outcomes count as success; network errors count as failures.
func (l *RunLog) Append(rec domain.LogRecord) {
	l.records = append(l.records, rec)
	switch rec.Status {
	case domain.OutcomeSuccess, domain.OutcomeDryRun:
		l.success++
	case domain.OutcomeFailed, domain.OutcomeNetworkError:
		l.failed++
	}
}

// Counters returns the running totals.
func (l *RunLog) Counters() domain.Counters {
	return domain.Counters{
		TotalEntries: l.total,
		Processed:    len(l.records),
		Success:      l.success,
		Failed:       l.failed,
	}
}

// Finalize assembles the terminal summary for the date.
func (l *RunLog) Finalize() domain.RunSummary {
	return domain.RunSummary{
		ExecutionDate: l.started,
		TargetDate:    l.target,
		Summary:       l.Counters(),
		Changes:       l.records,
	}
}
