// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/minigram/internal/util"
)

// =============================================================================
// SETTINGS STRUCTURES
// =============================================================================

// Settings holds the local client configuration. Backend location and the
// enabled flag are not part of it; those live in the Resolver.
type Settings struct {
	Backend BackendSettings `toml:"backend" json:"backend"`
	State   StateSettings   `toml:"state" json:"state"`
	Log     LogSettings     `toml:"log" json:"log"`
	UI      UISettings      `toml:"ui" json:"ui"`
}

// BackendSettings tunes the HTTP client.
type BackendSettings struct {
	// TimeoutSecs bounds a single request including reading the body.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RateLimit is requests per second. 0 disables limiting.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`
	UserAgent string  `toml:"user_agent" json:"user_agent"`
}

// StateSettings locates the durable key-value store.
type StateSettings struct {
	Path string `toml:"path" json:"path"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	// Env is "production" (JSON) or "development" (console).
	Env   string `toml:"env" json:"env"`
	Level string `toml:"level" json:"level"`
	// File receives log output. "-" means stderr.
	File string `toml:"file" json:"file"`
}

// UISettings configures terminal rendering.
type UISettings struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// PageSize is the default message page for listings.
	PageSize int `toml:"page_size" json:"page_size"`
	// PlainText disables markdown rendering of message bodies.
	PlainText bool `toml:"plain_text" json:"plain_text"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Backend: BackendSettings{
			TimeoutSecs: 30,
			RateLimit:   10,
			RateBurst:   5,
			UserAgent:   "minigram/1.0",
		},
		State: StateSettings{
			Path: "~/.minigram/state.db",
		},
		Log: LogSettings{
			Env:   "production",
			Level: "info",
			File:  "~/.minigram/minigram.log",
		},
		UI: UISettings{
			Theme:    "auto",
			PageSize: 50,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the minigram configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".minigram"), nil
}

// PathTOML returns the path to the TOML settings file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON settings file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads settings from ~/.minigram/config.toml, falling back to
// config.json, then to defaults. Environment overrides are applied last.
// A file that fails to parse is reported alongside the defaults.
func Load() (*Settings, error) {
	var loadErr error

	candidates := make([]string, 0, 2)
	if p, err := PathTOML(); err == nil {
		candidates = append(candidates, p)
	}
	if p, err := PathJSON(); err == nil {
		candidates = append(candidates, p)
	}

	for _, path := range candidates {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		s, err := LoadFromPath(path)
		if err != nil {
			loadErr = err
			continue
		}
		return s, nil
	}

	s := Default()
	s.ApplyEnvOverrides()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, loadErr
}

// LoadFromPath loads settings from a specific file. Files ending in .json
// are decoded as JSON, everything else as TOML.
func LoadFromPath(path string) (*Settings, error) {
	s := &Settings{}

	var err error
	if strings.HasSuffix(path, ".json") {
		err = loadJSON(s, path)
	} else {
		err = loadTOML(s, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}

	fillDefaults(s)
	s.ApplyEnvOverrides()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

func loadTOML(s *Settings, path string) error {
	if _, err := toml.DecodeFile(path, s); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

func loadJSON(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills zero values with defaults.
func fillDefaults(s *Settings) {
	d := Default()

	if s.Backend.TimeoutSecs == 0 {
		s.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if s.Backend.RateBurst == 0 {
		s.Backend.RateBurst = d.Backend.RateBurst
	}
	if s.Backend.UserAgent == "" {
		s.Backend.UserAgent = d.Backend.UserAgent
	}
	if s.State.Path == "" {
		s.State.Path = d.State.Path
	}
	if s.Log.Env == "" {
		s.Log.Env = d.Log.Env
	}
	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.File == "" {
		s.Log.File = d.Log.File
	}
	if s.UI.Theme == "" {
		s.UI.Theme = d.UI.Theme
	}
	if s.UI.PageSize == 0 {
		s.UI.PageSize = d.UI.PageSize
	}
}

// ApplyEnvOverrides applies MINIGRAM_* environment variables.
func (s *Settings) ApplyEnvOverrides() {
	if level := os.Getenv("MINIGRAM_LOG_LEVEL"); level != "" {
		s.Log.Level = level
	}
	if file := os.Getenv("MINIGRAM_LOG_FILE"); file != "" {
		s.Log.File = file
	}
	if path := os.Getenv("MINIGRAM_STATE_PATH"); path != "" {
		s.State.Path = path
	}
	if secs := os.Getenv("MINIGRAM_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			s.Backend.TimeoutSecs = n
		}
	}
	if rate := os.Getenv("MINIGRAM_RATE_LIMIT"); rate != "" {
		if f, err := strconv.ParseFloat(rate, 64); err == nil {
			s.Backend.RateLimit = f
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes settings to the default TOML path.
func Save(s *Settings) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(s, path)
}

// SaveTOML writes settings as TOML with 0600 permissions.
func SaveTOML(s *Settings, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# minigram configuration file\n")
	buf.WriteString("# Backend URL and enabled flag are managed with `minigram config`.\n\n")

	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// SaveJSON writes settings as indented JSON with 0600 permissions.
func SaveJSON(s *Settings, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks ranges and enumerations.
func (s *Settings) Validate() error {
	var errs ValidateErrors

	if s.Backend.TimeoutSecs < 1 || s.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", s.Backend.TimeoutSecs),
		})
	}
	if s.Backend.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit",
			Message: "must not be negative",
		})
	}
	if s.Backend.RateBurst < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_burst",
			Message: "must not be negative",
		})
	}

	switch s.Log.Env {
	case "production", "development":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.env",
			Message: fmt.Sprintf("must be 'production' or 'development', got %q", s.Log.Env),
		})
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", s.Log.Level),
		})
	}

	switch s.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be 'auto', 'dark' or 'light', got %q", s.UI.Theme),
		})
	}
	if s.UI.PageSize < 1 || s.UI.PageSize > 1000 {
		errs = append(errs, ValidationError{
			Field:   "ui.page_size",
			Message: fmt.Sprintf("must be between 1 and 1000, got %d", s.UI.PageSize),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}
