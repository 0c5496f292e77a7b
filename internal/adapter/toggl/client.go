// Package toggl implements ports.TrackerClient against the Toggl Track
// API v9.
package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"toggl-tagger/internal/domain"
	"toggl-tagger/internal/ports"
)

// Client talks to the Toggl Track API v9 through a RetryClient.
type Client struct {
	baseURL   string
	apiToken  string
	workspace int64
	rc        *RetryClient
	log       *slog.Logger
}

func NewClient(baseURL, apiToken string, workspaceID int64, rc *RetryClient, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		workspace: workspaceID,
		rc:        rc,
		log:       log,
	}
}

// ListTimeEntries fetches entries in [from, to].
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	if c.apiToken == "" {
		return nil, errors.New("missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/api/v9/me/time_entries"
	q := u.Query()
	q.Set("start_date", from.Format(time.RFC3339))
	q.Set("end_date", to.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	resp, err := c.rc.Do(ctx, http.MethodGet, u.String(), c.authHeader(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var raw []rawTimeEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// GetProject fetches one project by id.
// Toggl v9: GET /api/v9/workspaces/{wid}/projects/{pid}
func (c *Client) GetProject(ctx context.Context, projectID int64) (domain.Project, error) {
	u := fmt.Sprintf("%s/api/v9/workspaces/%d/projects/%d", c.baseURL, c.workspace, projectID)
	resp, err := c.rc.Do(ctx, http.MethodGet, u, c.authHeader(), nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Project{}, statusError(resp)
	}

	var raw rawProject
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.Project{}, err
	}
	return domain.Project{ID: raw.ID, WorkspaceID: raw.WorkspaceID, Name: raw.Name}, nil
}

// UpdateEntryTags replaces the tag set of one entry.
// Toggl v9: PUT /api/v9/workspaces/{wid}/time_entries/{id}
func (c *Client) UpdateEntryTags(ctx context.Context, entryID int64, tags []string) error {
	u := fmt.Sprintf("%s/api/v9/workspaces/%d/time_entries/%d", c.baseURL, c.workspace, entryID)
	body, err := json.Marshal(map[string][]string{"tags": tags})
	if err != nil {
		return err
	}
	header := c.authHeader()
	header.Set("Content-Type", "application/json")

	resp, err := c.rc.Do(ctx, http.MethodPut, u, header, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// CheckAccess validates credentials (GET /me) and workspace access
// (GET /workspaces/{wid}) before the reconciliation loop runs.
func (c *Client) CheckAccess(ctx context.Context) error {
	for _, path := range []string{
		"/api/v9/me",
		fmt.Sprintf("/api/v9/workspaces/%d", c.workspace),
	} {
		resp, err := c.rc.Do(ctx, http.MethodGet, c.baseURL+path, c.authHeader(), nil)
		if err != nil {
			return fmt.Errorf("access check %s: %w", path, err)
		}
		code := resp.StatusCode
		drain(resp)
		if code != http.StatusOK {
			return fmt.Errorf("access check %s: status %d", path, code)
		}
	}
	return nil
}

// authHeader builds Basic auth with the token as username and the fixed
// literal api_token as password, per the Toggl API contract.
func (c *Client) authHeader() http.Header {
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiToken + ":api_token"))
	h := http.Header{}
	h.Set("Authorization", "Basic "+auth)
	h.Set("Accept", "application/json")
	return h
}

func statusError(resp *http.Response) *ports.StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	reason := http.StatusText(resp.StatusCode)
	return &ports.StatusError{StatusCode: resp.StatusCode, Reason: reason, Body: string(body)}
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	WorkspaceID *int64     `json:"workspace_id"`
	Tags        []string   `json:"tags"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

func (r rawTimeEntry) toDomain() domain.TimeEntry {
	e := domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		Tags:        r.Tags,
		Start:       r.Start,
		DurationSec: r.Duration,
	}
	if r.ProjectID != nil {
		p := *r.ProjectID
		e.ProjectID = &p
	}
	if r.WorkspaceID != nil {
		w := *r.WorkspaceID
		e.WorkspaceID = &w
	}
	if r.Stop != nil {
		s := *r.Stop
		e.Stop = &s
	}
	return e
}

type rawProject struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}
