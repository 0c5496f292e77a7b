package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toggl-tagger/internal/domain"
	"toggl-tagger/internal/ports"
	"toggl-tagger/internal/window"
)

// ReconcileUseCase drives the per-date pipeline: resolve window, fetch
// entries, apply the exclusion rules, select tags, write, log. Entries
// and dates are processed strictly sequentially.
type ReconcileUseCase struct {
	Log      *slog.Logger
	Tracker  ports.TrackerClient
	Resolver *ProjectResolver
	Strategy ports.TagStrategy
	Applier  *UpdateApplier
	Sinks    []ports.AuditSink
	Loc      *time.Location
	Now      func() time.Time
}

func (uc *ReconcileUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// Run reconciles each requested date in order. A failed date never
// aborts the remaining ones; only context cancellation stops the run.
func (uc *ReconcileUseCase) Run(ctx context.Context, dates []time.Time) error {
	if uc.Tracker == nil || uc.Resolver == nil || uc.Strategy == nil || uc.Applier == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		uc.runDate(ctx, date)
	}
	return nil
}

func (uc *ReconcileUseCase) runDate(ctx context.Context, date time.Time) {
	target := window.Key(date)
	w := window.ForDate(date, uc.Loc)
	uc.Log.Info("fetching time entries",
		slog.String("date", target),
		slog.Time("from", w.Start),
		slog.Time("to", w.End))

	entries, err := uc.Tracker.ListTimeEntries(ctx, w.Start, w.End)
	if err != nil {
		uc.Log.Error("failed to fetch time entries, skipping date",
			slog.String("date", target),
			slog.String("error", err.Error()))
		return
	}
	uc.Log.Info("fetched time entries", slog.String("date", target), slog.Int("count", len(entries)))

	runLog := NewRunLog(uc.now().In(uc.Loc), target, len(entries))
	for _, entry := range entries {
		// Exclusion order matters: tagged entries and entries without a
		// project are dropped before any project lookup happens.
		if entry.Tagged() {
			continue
		}
		if entry.ProjectID == nil {
			continue
		}
		projectName, ok := uc.Resolver.Resolve(ctx, *entry.ProjectID)
		if !ok {
			continue
		}
		tags := uc.Strategy.SelectTags(entry, projectName)
		if len(tags) == 0 {
			continue
		}
		runLog.Append(uc.Applier.Apply(ctx, entry, projectName, tags))
	}

	summary := runLog.Finalize()
	uc.Log.Info("date reconciled",
		slog.String("date", target),
		slog.Int("total", summary.Summary.TotalEntries),
		slog.Int("processed", summary.Summary.Processed),
		slog.Int("success", summary.Summary.Success),
		slog.Int("failed", summary.Summary.Failed))

	uc.persist(ctx, summary)
}

func (uc *ReconcileUseCase) persist(ctx context.Context, summary domain.RunSummary) {
	for _, sink := range uc.Sinks {
		if err := sink.WriteRunSummary(ctx, summary); err != nil {
			uc.Log.Error("failed to persist run summary",
				slog.String("date", summary.TargetDate),
				slog.String("error", err.Error()))
		}
	}
}
