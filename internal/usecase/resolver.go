package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"toggl-tagger/internal/ports"
)

// ProjectResolver maps project ids to display names, memoizing hits for
// the lifetime of one run. Failures are not cached: a transient lookup
// failure may succeed on a later entry referencing the same project.
type ProjectResolver struct {
	Log     *slog.Logger
	Tracker ports.TrackerClient

	cache map[int64]string
}

func NewProjectResolver(log *slog.Logger, tracker ports.TrackerClient) *ProjectResolver {
	return &ProjectResolver{Log: log, Tracker: tracker, cache: make(map[int64]string)}
}

// Resolve returns the project name and whether it could be resolved.
func (r *ProjectResolver) Resolve(ctx context.Context, projectID int64) (string, bool) {
	if name, ok := r.cache[projectID]; ok {
		return name, true
	}
	p, err := r.Tracker.GetProject(ctx, projectID)
	if err != nil {
		var se *ports.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			r.Log.Warn("project not found, skipping entry; it may have been deleted or moved to another workspace",
				slog.Int64("project_id", projectID))
		} else {
			r.Log.Warn("project lookup failed, skipping entry",
				slog.Int64("project_id", projectID),
				slog.String("error", err.Error()))
		}
		return "", false
	}
	r.cache[projectID] = p.Name
	return p.Name, true
}
