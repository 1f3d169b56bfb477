// Package config loads the seirel configuration: YAML layered over
// built-in defaults, SEI_REL_* environment overrides on top, and a
// CUE schema check before anything reaches the engine.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
)

// DefaultPath is where the CLI looks when no config flag is given.
const DefaultPath = "~/.config/seirel/config.yaml"

// Config is the full configuration tree. Fields carry yaml tags for
// file decoding and json tags because the schema check encodes the
// struct through CUE, which follows json naming.
type Config struct {
	Store     Store     `yaml:"store" json:"store"`
	Collector Collector `yaml:"collector" json:"collector"`
	Limits    Limits    `yaml:"limits" json:"limits"`
	Fetch     Fetch     `yaml:"fetch" json:"fetch"`
	Email     Email     `yaml:"email" json:"email"`
}

// Store locates the durable files a run writes.
type Store struct {
	HistoryPath string `yaml:"history_path" json:"history_path"`
	JournalPath string `yaml:"journal_path" json:"journal_path"`
}

// Collector locates the snapshot file the run reads.
type Collector struct {
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`
}

// Limits bounds what a single run may admit and download.
type Limits struct {
	// MaxNewPerRun caps how many new processes one run admits.
	// Zero pauses new intake entirely.
	MaxNewPerRun int `yaml:"max_new_per_run" json:"max_new_per_run"`

	// MaxArtifactMB caps the size of one downloaded artifact.
	MaxArtifactMB int `yaml:"max_artifact_mb" json:"max_artifact_mb"`
}

// Fetch configures artifact downloads.
type Fetch struct {
	Workers        int    `yaml:"workers" json:"workers"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	ArtifactDir    string `yaml:"artifact_dir" json:"artifact_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Email configures the report mail. Host, From and To are required
// only when Enabled is set.
type Email struct {
	Enabled       bool     `yaml:"enabled" json:"enabled"`
	Host          string   `yaml:"host" json:"host"`
	Port          int      `yaml:"port" json:"port"`
	Username      string   `yaml:"username" json:"username"`
	Password      string   `yaml:"password" json:"password"`
	From          string   `yaml:"from" json:"from"`
	To            []string `yaml:"to" json:"to"`
	SubjectPrefix string   `yaml:"subject_prefix" json:"subject_prefix"`
}

// Default returns the built-in configuration applied underneath the
// config file and any environment overrides.
func Default() Config {
	return Config{
		Store: Store{
			HistoryPath: "~/.local/state/seirel/history.json",
			JournalPath: "~/.local/state/seirel/journal.db",
		},
		Collector: Collector{
			SnapshotPath: "./snapshot.json",
		},
		Limits: Limits{
			MaxNewPerRun:  10,
			MaxArtifactMB: 100,
		},
		Fetch: Fetch{
			Workers:        4,
			BaseURL:        "https://sei.example.gov.br",
			ArtifactDir:    "~/.local/state/seirel/artifacts",
			TimeoutSeconds: 30,
		},
		Email: Email{
			Port: 587,
			// To stays non-nil so the schema sees an empty list,
			// not null.
			To:            []string{},
			SubjectPrefix: "[SEI]",
		},
	}
}

// InvalidConfigError aggregates every schema violation found in one
// configuration file.
type InvalidConfigError struct {
	Path   string
	Errors []ValidationError
}

func (e *InvalidConfigError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid config %s: %s", e.Path, e.Errors[0].Error())
	}
	return fmt.Sprintf("invalid config %s: %d schema violations", e.Path, len(e.Errors))
}

// Load reads the YAML file at path over the defaults, applies
// environment overrides, expands ~ in path fields and validates the
// result. Unknown YAML keys are rejected. Schema violations surface
// as an *InvalidConfigError.
func Load(path string) (Config, error) {
	return load(path, false)
}

// LoadOptional behaves like Load but treats a missing file as an
// empty one. The CLI uses it for the default config location, so a
// bare environment still yields a usable configuration.
func LoadOptional(path string) (Config, error) {
	return load(path, true)
}

func load(path string, missingOK bool) (Config, error) {
	path, err := expandHome(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty file means no overrides, not a parse failure.
		if derr := dec.Decode(&cfg); derr != nil && !errors.Is(derr, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, derr)
		}
	case missingOK && errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := expandPaths(&cfg); err != nil {
		return Config{}, err
	}
	if violations := cfg.Validate(); len(violations) > 0 {
		return Config{}, &InvalidConfigError{Path: path, Errors: violations}
	}
	return cfg, nil
}

// Policy converts the configured limits into engine terms.
func (c Config) Policy() engine.Policy {
	return engine.Policy{
		MaxNewPerRun:         c.Limits.MaxNewPerRun,
		MaxArtifactSizeBytes: int64(c.Limits.MaxArtifactMB) * 1024 * 1024,
	}
}

// Timeout is the per-request budget for artifact fetches.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// applyEnv copies SEI_REL_* variables over the loaded values. A set
// but malformed variable is an error rather than a silent fallback.
func applyEnv(c *Config) error {
	if v, ok := os.LookupEnv("SEI_REL_HISTORY_PATH"); ok {
		c.Store.HistoryPath = v
	}
	if v, ok := os.LookupEnv("SEI_REL_SNAPSHOT_PATH"); ok {
		c.Collector.SnapshotPath = v
	}
	if v, ok := os.LookupEnv("SEI_REL_MAX_NEW_PER_RUN"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEI_REL_MAX_NEW_PER_RUN: %w", err)
		}
		c.Limits.MaxNewPerRun = n
	}
	if v, ok := os.LookupEnv("SEI_REL_SMTP_HOST"); ok {
		c.Email.Host = v
	}
	if v, ok := os.LookupEnv("SEI_REL_SMTP_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEI_REL_SMTP_PORT: %w", err)
		}
		c.Email.Port = n
	}
	if v, ok := os.LookupEnv("SEI_REL_SMTP_USERNAME"); ok {
		c.Email.Username = v
	}
	if v, ok := os.LookupEnv("SEI_REL_SMTP_PASSWORD"); ok {
		c.Email.Password = v
	}
	if v, ok := os.LookupEnv("SEI_REL_EMAIL_TO"); ok {
		c.Email.To = splitList(v)
	}
	if v, ok := os.LookupEnv("SEI_REL_EMAIL_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEI_REL_EMAIL_ENABLED: %w", err)
		}
		c.Email.Enabled = b
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandPaths(c *Config) error {
	for _, p := range []*string{
		&c.Store.HistoryPath,
		&c.Store.JournalPath,
		&c.Collector.SnapshotPath,
		&c.Fetch.ArtifactDir,
	} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// expandHome replaces a leading ~/ with the current user's home
// directory. A bare ~ maps to the home directory itself.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
