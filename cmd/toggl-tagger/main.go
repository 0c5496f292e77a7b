package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"toggl-tagger/internal/app"
	"toggl-tagger/internal/config"
	"toggl-tagger/internal/window"
)

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w\nhint: set TOGGL_API_TOKEN and TOGGL_WORKSPACE_ID in the environment or a .env file", err)
	}

	loc, err := time.LoadLocation(cfg.Run.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w\nhint: TAGGER_TZ must be an IANA name like Asia/Tokyo", cfg.Run.Timezone, err)
	}

	mapping, err := config.LoadMapping(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("%w\nhint: the mapping file maps project names to non-empty tag lists, e.g. {\"Acme\": [\"billable\"]}", err)
	}
	if len(mapping) == 0 {
		logger.Warn("tag mapping is empty, no project will resolve to tags")
	}

	if cmd.Bool("serve") && cmd.Bool("interactive") {
		return errors.New("interactive mode cannot be combined with --serve")
	}

	dates, err := targetDates(cmd, loc)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, logger, cfg, mapping, loc, app.Options{
		DryRun:      cmd.Bool("dry-run"),
		Interactive: cmd.Bool("interactive"),
		In:          os.Stdin,
		Out:         os.Stdout,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.CheckAccess(ctx); err != nil {
		return fmt.Errorf("%w\nhint: verify the API token and that the workspace id belongs to it", err)
	}

	if cmd.Bool("serve") {
		return serve(ctx, logger, application, cmd.String("addr"))
	}

	if err := application.Reconcile(ctx, dates, cmd.Bool("dry-run")); err != nil {
		return err
	}
	logger.Info("run completed", slog.Int("dates", len(dates)))
	return nil
}

// targetDates produces the dates to process: explicit --date values in
// the given order, or a consecutive range derived from --days/--offset.
func targetDates(cmd *cli.Command, loc *time.Location) ([]time.Time, error) {
	if explicit := cmd.StringSlice("date"); len(explicit) > 0 {
		dates := make([]time.Time, 0, len(explicit))
		for _, s := range explicit {
			d, err := window.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("%w\nhint: pass --date as YYYY-MM-DD", err)
			}
			dates = append(dates, d)
		}
		return dates, nil
	}
	days := int(cmd.Int("days"))
	offset := int(cmd.Int("offset"))
	if days < 1 {
		return nil, errors.New("--days must be at least 1")
	}
	if offset < 0 {
		return nil, errors.New("--offset must not be negative")
	}
	return window.Dates(time.Now(), loc, offset, days), nil
}

func serve(ctx context.Context, logger *slog.Logger, application *app.App, addr string) error {
	srv := application.HTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "toggl-tagger",
		Usage:  "Reconcile untagged Toggl time entries by deriving tags from their projects",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the project-to-tags mapping file (JSON or YAML)",
				Value:   "config.json",
				Sources: cli.EnvVars("TAGGER_CONFIG_FILE"),
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Number of consecutive days to process",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Days back from today for the most recent target date (1 = yesterday)",
				Value: 1,
			},
			&cli.StringSliceFlag{
				Name:  "date",
				Usage: "Explicit target date YYYY-MM-DD (repeatable, overrides --days/--offset)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute and log intended changes without writing",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Confirm or override the tag selection per entry",
			},
			&cli.BoolFlag{
				Name:  "serve",
				Usage: "Run an HTTP trigger server instead of a one-shot reconciliation",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address for --serve",
				Value: ":8080",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose logging",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
