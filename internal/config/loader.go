package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultResourcePath    = "pending_jobs.txt"
	DefaultContainer       = "text-container"
	DefaultDwellDurationMs = 3000
	DefaultTransitionMs    = 400
	DefaultPollIntervalMs  = 5000
	DefaultServerPort      = 8000
	DefaultServerDir       = "."
)

// DefaultServerConfig returns a ServerConfig with sensible default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: DefaultServerPort,
		Dir:  DefaultServerDir,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Resource: Resource{
			Path: DefaultResourcePath,
		},
		Display: Display{
			Container:       DefaultContainer,
			DwellDurationMs: DefaultDwellDurationMs,
			TransitionMs:    DefaultTransitionMs,
		},
		Poll: Poll{
			IntervalMs: DefaultPollIntervalMs,
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// DefaultPath returns the config file location under basePath.
func DefaultPath(basePath string) string {
	return filepath.Join(basePath, ".marquee", "config.yaml")
}

// LoadConfig reads and parses .marquee/config.yaml from the given base path.
// If the file doesn't exist, returns default config.
func LoadConfig(basePath string) (*Config, error) {
	return LoadFile(DefaultPath(basePath), true)
}

// LoadFile reads and parses the config file at path. When optional is true a
// missing file yields the defaults; otherwise it is an error.
// Applies defaults for any missing fields.
func LoadFile(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A server block with only some keys set keeps defaults for the rest.
	if cfg.Server != nil {
		def := DefaultServerConfig()
		if cfg.Server.Port == 0 {
			cfg.Server.Port = def.Port
		}
		if cfg.Server.Dir == "" {
			cfg.Server.Dir = def.Dir
		}
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Resource.Path == "" {
		return ValidationError{Field: "resource.path", Message: "required field is empty"}
	}
	if cfg.Display.Container == "" {
		return ValidationError{Field: "display.container", Message: "required field is empty"}
	}
	if cfg.Display.DwellDurationMs <= 0 {
		return ValidationError{Field: "display.dwell_duration_ms", Message: "must be positive"}
	}
	if cfg.Display.TransitionMs < 0 {
		return ValidationError{Field: "display.transition_ms", Message: "must not be negative"}
	}
	if cfg.Poll.IntervalMs <= 0 {
		return ValidationError{Field: "poll.interval_ms", Message: "must be positive"}
	}

	if cfg.Server != nil {
		if err := ValidateServerConfig(cfg.Server); err != nil {
			return err
		}
	}

	return nil
}

// ValidateServerConfig checks that server config values are valid.
func ValidateServerConfig(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
