package config

import (
	"time"

	"hepevd/internal/domain"
	"hepevd/internal/render"
)

// Config is the root configuration structure
type Config struct {
	Version               int            `yaml:"version"`
	Server                ServerConfig   `yaml:"server"`
	Database              DatabaseConfig `yaml:"database"`
	Event                 EventConfig    `yaml:"event"`
	Views                 ViewsConfig    `yaml:"views"`
	InteractionPrecedence []string       `yaml:"interaction_precedence"`
	Metrics               MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EventConfig selects the event loaded at startup
type EventConfig struct {
	File     string   `yaml:"file,omitempty"`  // JSON or YAML event file
	Watch    bool     `yaml:"watch"`           // reload File when it changes
	Debounce Duration `yaml:"debounce"`
}

// ViewsConfig holds the hit style of each view
type ViewsConfig struct {
	ThreeD render.Style `yaml:"3d"`
	TwoD   render.Style `yaml:"2d"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Styles returns the view styles keyed by dimension
func (v ViewsConfig) Styles() map[domain.Dim]render.Style {
	return map[domain.Dim]render.Style{
		domain.Dim3D: v.ThreeD,
		domain.Dim2D: v.TwoD,
	}
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
