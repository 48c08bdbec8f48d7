package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configurable shiftclock settings.
type Config struct {
	Subject              string   `json:"subject"`                // default subject id for all commands
	DataDir              string   `json:"data_dir"`               // override session store location
	IdleEnabled          *bool    `json:"idle_enabled"`           // nil means enabled
	IdleThresholdMinutes int      `json:"idle_threshold_minutes"` // countdown before auto-pause
	DefaultFormat        string   `json:"default_format"`         // "text" | "json"
	ExemptSubjects       []string `json:"exempt_subjects"`        // subjects not time-tracked
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		IdleThresholdMinutes: 5,
		DefaultFormat:        "text",
		ExemptSubjects:       []string{},
	}
}

// IdleAutoPause reports whether idle auto-pause is on. Absent means on.
func (c Config) IdleAutoPause() bool {
	return c.IdleEnabled == nil || *c.IdleEnabled
}

// IsExempt reports whether subjectID is exempt from time tracking.
func (c Config) IsExempt(subjectID string) bool {
	for _, s := range c.ExemptSubjects {
		if s == subjectID {
			return true
		}
	}
	return false
}

// LoadGlobal reads ~/.config/shiftclock/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "shiftclock", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .shiftclockrc in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".shiftclockrc", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	apply := func(src *Config) {
		if src == nil {
			return
		}
		if src.Subject != "" {
			result.Subject = src.Subject
		}
		if src.DataDir != "" {
			result.DataDir = src.DataDir
		}
		if src.IdleEnabled != nil {
			result.IdleEnabled = src.IdleEnabled
		}
		if src.IdleThresholdMinutes > 0 {
			result.IdleThresholdMinutes = src.IdleThresholdMinutes
		}
		if src.DefaultFormat != "" {
			result.DefaultFormat = src.DefaultFormat
		}
		if len(src.ExemptSubjects) > 0 {
			result.ExemptSubjects = src.ExemptSubjects
		}
	}
	// Global values over defaults, then project values over global.
	apply(global)
	apply(project)

	return result
}

// ApplyEnv overlays SHIFTCLOCK_* environment variables onto cfg, loading a
// .shiftclock.env file first if one is present in the working directory.
// Environment values win over both config files.
func ApplyEnv(cfg Config) Config {
	// godotenv never overrides variables already set in the environment, and
	// an absent env file is not an error worth surfacing.
	_ = godotenv.Load(".shiftclock.env")

	if v := os.Getenv("SHIFTCLOCK_SUBJECT"); v != "" {
		cfg.Subject = v
	}
	if v := os.Getenv("SHIFTCLOCK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SHIFTCLOCK_IDLE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IdleThresholdMinutes = n
		}
	}
	if v := os.Getenv("SHIFTCLOCK_IDLE_ENABLED"); v != "" {
		enabled := strings.ToLower(v) != "false" && v != "0"
		cfg.IdleEnabled = &enabled
	}
	if v := os.Getenv("SHIFTCLOCK_FORMAT"); v != "" {
		cfg.DefaultFormat = v
	}
	return cfg
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
