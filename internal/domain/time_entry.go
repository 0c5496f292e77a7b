package domain

import "time"

// TimeEntry is an immutable snapshot of a Toggl time entry, fetched once
// per run. Local mutation never happens; tag changes go through the
// tracker API.
type TimeEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	WorkspaceID *int64
	Tags        []string
	Start       time.Time
	Stop        *time.Time
	DurationSec int64 // Negative means running in Toggl API semantics
}

// Tagged reports whether the entry already carries at least one tag.
// Tagged entries are never touched.
func (e TimeEntry) Tagged() bool { return len(e.Tags) > 0 }
