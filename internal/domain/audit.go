package domain

import "time"

// Outcome classifies what happened to one processed entry.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFailed       Outcome = "failed"
	OutcomeDryRun       Outcome = "dry_run"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeNetworkError Outcome = "network_error"
)

// LogRecord is one append-only audit line per processed entry. It is
// created once and never mutated afterwards.
type LogRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      Outcome   `json:"status"`
	EntryID     int64     `json:"entry_id"`
	ProjectName string    `json:"project_name"`
	Description string    `json:"description"`
	Start       string    `json:"start,omitempty"`
	DurationSec int64     `json:"duration,omitempty"`
	TagsAdded   []string  `json:"tags_added,omitempty"`
	TagsToAdd   []string  `json:"tags_to_add,omitempty"`
	ErrorCode   int       `json:"error_code,omitempty"`
	ErrorReason string    `json:"error_reason,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Counters holds the per-date aggregate totals.
type Counters struct {
	TotalEntries int `json:"total_entries"`
	Processed    int `json:"processed"`
	Success      int `json:"success"`
	Failed       int `json:"failed"`
}

// RunSummary is the immutable terminal artifact for one target date:
// counters plus the ordered records, persisted exactly once.
type RunSummary struct {
	ExecutionDate time.Time   `json:"execution_date"`
	TargetDate    string      `json:"target_date"`
	Summary       Counters    `json:"summary"`
	Changes       []LogRecord `json:"changes"`
}
