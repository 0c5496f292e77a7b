package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"toggl-tagger/internal/window"
)

// HTTPServer returns a server exposing endpoints to trigger
// reconciliation runs. Runs are serialized: a trigger while another run
// is in flight answers 409.
func (a *App) HTTPServer(addr string) *http.Server {
	var running atomic.Bool

	r := chi.NewRouter()
	r.Use(a.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// POST /run?date=YYYY-MM-DD&dry_run=1
	// date defaults to yesterday in the configured timezone.
	r.Post("/run", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		date := window.Dates(time.Now(), a.loc, 1, 1)[0]
		if ds := q.Get("date"); ds != "" {
			parsed, err := window.ParseDate(ds)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": err.Error()})
				return
			}
			date = parsed
		}
		dryRun := a.dryRun || q.Get("dry_run") == "1"

		if !running.CompareAndSwap(false, true) {
			writeJSON(w, http.StatusConflict, map[string]any{"status": "error", "error": "run already in progress"})
			return
		}
		defer running.Store(false)

		if err := a.Reconcile(req.Context(), []time.Time{date}, dryRun); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"status": "error",
				"error":  err.Error(),
				"date":   window.Key(date),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"date":    window.Key(date),
			"dry_run": dryRun,
		})
	})

	a.log.Info("http trigger server configured", slog.String("addr", addr))
	return &http.Server{Addr: addr, Handler: r}
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
