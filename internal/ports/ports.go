package ports

import (
	"context"
	"fmt"
	"time"

	"toggl-tagger/internal/domain"
)

// TrackerClient defines the operations the reconciler needs against the
// time-tracking API.
type TrackerClient interface {
	// ListTimeEntries fetches entries whose start falls in [from, to].
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
	// GetProject fetches a single project by identifier.
	GetProject(ctx context.Context, projectID int64) (domain.Project, error)
	// UpdateEntryTags replaces the tag set of one entry.
	UpdateEntryTags(ctx context.Context, entryID int64, tags []string) error
	// CheckAccess validates the credentials and workspace access up front.
	CheckAccess(ctx context.Context) error
}

// AuditSink persists a finalized run summary. Implementations must treat
// the summary as immutable.
type AuditSink interface {
	WriteRunSummary(ctx context.Context, run domain.RunSummary) error
}

// TagStrategy decides the tags to apply to one entry. A nil or empty
// result means skip: no write, no audit record.
type TagStrategy interface {
	SelectTags(entry domain.TimeEntry, projectName string) []string
}

// StatusError reports a non-2xx API response that survived the retry
// policy. Callers branch on StatusCode to classify outcomes.
type StatusError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, e.Reason, e.Body)
}
