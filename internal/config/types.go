package config

import "time"

// Resource identifies the text resource that is polled for lines.
type Resource struct {
	// Path is the resource locator, relative to BaseURL when that is set,
	// otherwise a filesystem path.
	Path    string `yaml:"path"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// Display controls how lines are shown.
type Display struct {
	Container       string `yaml:"container"`
	DwellDurationMs int    `yaml:"dwell_duration_ms"`
	TransitionMs    int    `yaml:"transition_ms"`
}

// Poll controls how often the resource is re-fetched.
type Poll struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ServerConfig configures `marquee serve`.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Dir  string `yaml:"dir"`
}

// Config represents the .marquee/config.yaml file.
type Config struct {
	Resource Resource      `yaml:"resource"`
	Display  Display       `yaml:"display"`
	Poll     Poll          `yaml:"poll"`
	Server   *ServerConfig `yaml:"server,omitempty"`
}

// DwellDuration returns how long a line stays fully visible.
func (c *Config) DwellDuration() time.Duration {
	return time.Duration(c.Display.DwellDurationMs) * time.Millisecond
}

// TransitionDuration returns the length of one enter or leave animation.
func (c *Config) TransitionDuration() time.Duration {
	return time.Duration(c.Display.TransitionMs) * time.Millisecond
}

// PollInterval returns the time between resource re-fetches.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMs) * time.Millisecond
}
