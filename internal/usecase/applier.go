package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toggl-tagger/internal/domain"
	"toggl-tagger/internal/ports"
)

// UpdateApplier issues (or simulates) the tag-assignment write and
// classifies the outcome into a LogRecord. A write failure never aborts
// the caller's loop.
type UpdateApplier struct {
	Log     *slog.Logger
	Tracker ports.TrackerClient
	DryRun  bool
	Now     func() time.Time
}

func (a *UpdateApplier) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// Apply writes tags to one entry and returns the audit record.
func (a *UpdateApplier) Apply(ctx context.Context, entry domain.TimeEntry, projectName string, tags []string) domain.LogRecord {
	rec := domain.LogRecord{
		Timestamp:   a.now(),
		EntryID:     entry.ID,
		ProjectName: projectName,
		Description: entry.Description,
	}

	if a.DryRun {
		rec.Status = domain.OutcomeDryRun
		rec.Start = entry.Start.Format(time.RFC3339)
		rec.DurationSec = entry.DurationSec
		rec.TagsToAdd = tags
		a.Log.Info("dry-run, would apply tags",
			slog.String("project", projectName),
			slog.Any("tags", tags),
			slog.Int64("entry_id", entry.ID))
		return rec
	}

	err := a.Tracker.UpdateEntryTags(ctx, entry.ID, tags)
	switch {
	case err == nil:
		rec.Status = domain.OutcomeSuccess
		rec.Start = entry.Start.Format(time.RFC3339)
		rec.DurationSec = entry.DurationSec
		rec.TagsAdded = tags
		a.Log.Info("tags applied",
			slog.String("project", projectName),
			slog.Any("tags", tags),
			slog.Int64("entry_id", entry.ID))
	default:
		var se *ports.StatusError
		if errors.As(err, &se) {
			rec.Status = domain.OutcomeFailed
			rec.ErrorCode = se.StatusCode
			rec.ErrorReason = se.Reason
			a.Log.Error("update rejected",
				slog.String("project", projectName),
				slog.Int64("entry_id", entry.ID),
				slog.Int("status", se.StatusCode))
		} else {
			rec.Status = domain.OutcomeNetworkError
			rec.Error = err.Error()
			a.Log.Error("update failed after retries",
				slog.String("project", projectName),
				slog.Int64("entry_id", entry.ID),
				slog.String("error", err.Error()))
		}
	}
	return rec
}
