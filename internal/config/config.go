// Package config provides configuration management for hepevd.
//
// The config file describes how the viewer runs: where it listens, which
// event it starts with and how each view draws its hits. Events themselves
// live in the database.
//
// Config file locations (priority order):
//  1. $HEPEVD_CONFIG
//  2. ./hepevd.yaml
//  3. ~/.config/hepevd/config.yaml
//  4. /etc/hepevd/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hepevd/internal/domain"
	"hepevd/internal/hierarchy"
	"hepevd/internal/render"
)

// DefaultInteractionPrecedence orders particle menu roots when the config
// does not
var DefaultInteractionPrecedence = []string{"Neutrino", "Beam", "Cosmic", "Other"}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5555"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./hepevd.db"
	}
	if c.Event.Debounce == 0 {
		c.Event.Debounce = Duration(500 * time.Millisecond)
	}
	if len(c.InteractionPrecedence) == 0 {
		c.InteractionPrecedence = append([]string(nil), DefaultInteractionPrecedence...)
	}

	c.Views.ThreeD = styleDefaults(c.Views.ThreeD, domain.Dim3D)
	c.Views.TwoD = styleDefaults(c.Views.TwoD, domain.Dim2D)
}

func styleDefaults(s render.Style, dim domain.Dim) render.Style {
	def := render.DefaultStyle(dim)
	if s.HitSize <= 0 {
		s.HitSize = def.HitSize
	}
	if s.DefaultColour == "" {
		s.DefaultColour = def.DefaultColour
	}
	if s.ColourMap == "" {
		s.ColourMap = def.ColourMap
	}
	return s
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	for name, s := range map[string]render.Style{"3d": c.Views.ThreeD, "2d": c.Views.TwoD} {
		if _, err := render.ParseHex(s.DefaultColour); err != nil {
			return fmt.Errorf("views.%s.default_colour: %w", name, err)
		}
		if !render.KnownColourMap(s.ColourMap) {
			return fmt.Errorf("views.%s.colour_map: unknown map %q", name, s.ColourMap)
		}
	}
	return nil
}

// Precedence returns the interaction type ranking for the particle menu
func (c *Config) Precedence() hierarchy.Precedence {
	return hierarchy.PrecedenceFromList(c.InteractionPrecedence)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	if c.Event.File != "" {
		summary += fmt.Sprintf("Event: %s (watch: %v)\n", c.Event.File, c.Event.Watch)
	}
	summary += fmt.Sprintf("Colour maps: 3D %s, 2D %s; metrics: %v",
		c.Views.ThreeD.ColourMap, c.Views.TwoD.ColourMap, c.Metrics.Enabled)
	return summary
}
