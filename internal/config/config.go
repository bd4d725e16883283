// Package config loads and saves midikeys settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/icco/midikeys/internal/controller"
)

const appName = "midikeys"

// OutputConfig selects where messages go.
type OutputConfig struct {
	Port    string `json:"port,omitempty"`    // hardware output port name
	Virtual string `json:"virtual,omitempty"` // virtual output port name
	Synth   bool   `json:"synth,omitempty"`   // built-in tone generator
	Record  string `json:"record,omitempty"`  // SMF path
}

// KeyboardConfig holds input settings.
type KeyboardConfig struct {
	Velocity   int `json:"velocity"`
	Octave     int `json:"octave"`
	HoldMillis int `json:"holdMillis"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `json:"level,omitempty"`
	Path  string `json:"path,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output   OutputConfig   `json:"output"`
	Keyboard KeyboardConfig `json:"keyboard"`
	Log      LogConfig      `json:"log"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Keyboard: KeyboardConfig{
			Velocity:   controller.DefaultVelocity,
			Octave:     4,
			HoldMillis: 400,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields defaults. The result is not validated, so
// callers can apply overrides before calling Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks ranges the input layer relies on.
func (c *Config) Validate() error {
	if c.Keyboard.Velocity < 1 || c.Keyboard.Velocity > 127 {
		return fmt.Errorf("velocity %d out of range 1-127", c.Keyboard.Velocity)
	}
	if c.Keyboard.Octave < -1 || c.Keyboard.Octave > 8 {
		return fmt.Errorf("octave %d out of range -1-8", c.Keyboard.Octave)
	}
	if c.Keyboard.HoldMillis <= 0 {
		return fmt.Errorf("holdMillis must be positive, got %d", c.Keyboard.HoldMillis)
	}
	return nil
}
