// Package app wires adapters, strategies and use cases.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"toggl-tagger/internal/adapter/audit"
	"toggl-tagger/internal/adapter/mysql"
	tg "toggl-tagger/internal/adapter/toggl"
	"toggl-tagger/internal/config"
	"toggl-tagger/internal/migrate"
	"toggl-tagger/internal/ports"
	"toggl-tagger/internal/selector"
	"toggl-tagger/internal/usecase"
)

// Options selects the per-invocation behavior.
type Options struct {
	DryRun      bool
	Interactive bool
	In          io.Reader // operator input for interactive mode
	Out         io.Writer // operator prompt output
}

// App holds the wired components for one process.
type App struct {
	log      *slog.Logger
	loc      *time.Location
	tracker  ports.TrackerClient
	strategy ports.TagStrategy
	sinks    []ports.AuditSink
	dryRun   bool
	dbSink   *mysql.Sink
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config, mapping config.TagMapping, loc *time.Location, opts Options) (*App, error) {
	rc := tg.NewRetryClient(log)
	tracker := tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.WorkspaceID, rc, log)

	var strategy ports.TagStrategy
	if opts.Interactive {
		strategy = selector.NewInteractive(mapping, opts.In, opts.Out)
	} else {
		strategy = &selector.Static{Mapping: mapping}
	}

	a := &App{
		log:      log,
		loc:      loc,
		tracker:  tracker,
		strategy: strategy,
		sinks:    []ports.AuditSink{&audit.FileSink{Dir: cfg.Audit.Dir, Log: log}},
		dryRun:   opts.DryRun,
	}

	if cfg.Audit.MySQLDSN != "" {
		if err := migrate.Run(ctx, cfg.Audit.MySQLDSN, log); err != nil {
			return nil, fmt.Errorf("audit db migration: %w", err)
		}
		sink, err := mysql.NewSink(ctx, cfg.Audit.MySQLDSN, log)
		if err != nil {
			return nil, fmt.Errorf("audit db: %w", err)
		}
		a.dbSink = sink
		a.sinks = append(a.sinks, sink)
	}
	return a, nil
}

// CheckAccess validates credentials and workspace access before any
// reconciliation work starts.
func (a *App) CheckAccess(ctx context.Context) error {
	return a.tracker.CheckAccess(ctx)
}

// Reconcile runs the pipeline over the given dates. Each call is one
// run: the project cache starts empty.
func (a *App) Reconcile(ctx context.Context, dates []time.Time, dryRun bool) error {
	uc := &usecase.ReconcileUseCase{
		Log:      a.log,
		Tracker:  a.tracker,
		Resolver: usecase.NewProjectResolver(a.log, a.tracker),
		Strategy: a.strategy,
		Applier:  &usecase.UpdateApplier{Log: a.log, Tracker: a.tracker, DryRun: dryRun},
		Sinks:    a.sinks,
		Loc:      a.loc,
	}
	return uc.Run(ctx, dates)
}

// DryRun reports the configured default mode.
func (a *App) DryRun() bool { return a.dryRun }

// Close releases held resources.
func (a *App) Close() error {
	if a.dbSink != nil {
		return a.dbSink.Close()
	}
	return nil
}
