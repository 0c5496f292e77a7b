package config

import (
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds environment-driven configuration. It is constructed once
// at startup and passed by reference; nothing below cmd reads the
// environment.
type Config struct {
	Toggl struct {
		APIToken    string
		WorkspaceID int64
		BaseURL     string // default: https://api.track.toggl.com
	}
	Run struct {
		Timezone string // IANA name, e.g. Asia/Tokyo
	}
	Audit struct {
		Dir      string // directory for per-run JSON audit files
		MySQLDSN string // optional mirror, empty disables
	}
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config

	cfg.Toggl.APIToken = os.Getenv("TOGGL_API_TOKEN")
	if ws := os.Getenv("TOGGL_WORKSPACE_ID"); ws != "" {
		v, err := strconv.ParseInt(ws, 10, 64)
		if err != nil {
			return cfg, validation.NewError("config_workspace", "TOGGL_WORKSPACE_ID must be an integer")
		}
		cfg.Toggl.WorkspaceID = v
	}
	cfg.Toggl.BaseURL = os.Getenv("TOGGL_BASE_URL")
	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	}

	cfg.Run.Timezone = os.Getenv("TAGGER_TZ")
	if cfg.Run.Timezone == "" {
		cfg.Run.Timezone = "Asia/Tokyo"
	}

	cfg.Audit.Dir = os.Getenv("TAGGER_LOG_DIR")
	if cfg.Audit.Dir == "" {
		cfg.Audit.Dir = "logs"
	}
	cfg.Audit.MySQLDSN = os.Getenv("MYSQL_DSN")

	return cfg, cfg.Validate()
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if err := validation.Validate(c.Toggl.APIToken, validation.Required.Error("TOGGL_API_TOKEN is required")); err != nil {
		return err
	}
	if err := validation.Validate(c.Toggl.WorkspaceID, validation.Required.Error("TOGGL_WORKSPACE_ID is required"), validation.Min(int64(1))); err != nil {
		return err
	}
	return validation.Validate(c.Run.Timezone, validation.Required)
}
