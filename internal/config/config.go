// Package config handles configuration file loading and parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings like "1.5s" or "2m", or from integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Integer values are milliseconds.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '1.5s', '2m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the snackd configuration, loaded from
// ~/.config/snackd/config.toml.
type Config struct {
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Display  DisplayConfig  `toml:"display"`
	Behavior BehaviorConfig `toml:"behavior"`
	Audio    AudioConfig    `toml:"audio"`
}

// TimeoutConfig holds the auto-dismiss defaults the coordinator resolves
// the Short and Long duration sentinels against.
type TimeoutConfig struct {
	Short Duration `toml:"short"` // e.g. "1.5s" or 1500
	Long  Duration `toml:"long"`  // e.g. "2.75s" or 2750
}

// DisplayConfig holds terminal rendering settings for the snackbar.
type DisplayConfig struct {
	Position string `toml:"position"` // "top" or "bottom"
	Width    int    `toml:"width"`    // columns, 0 = full terminal width
}

// BehaviorConfig holds behavior settings.
type BehaviorConfig struct {
	PauseWhenHidden bool `toml:"pause_when_hidden"` // suspend timeouts while the host loses focus
}

// AudioConfig holds the sound cue settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Sound   string `toml:"sound"`  // path to a wav/ogg/mp3 file, empty = silent
}

// Position values accepted by DisplayConfig.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Timeouts: TimeoutConfig{
			Short: Duration(1500 * time.Millisecond),
			Long:  Duration(2750 * time.Millisecond),
		},
		Display: DisplayConfig{
			Position: PositionTop,
			Width:    0,
		},
		Behavior: BehaviorConfig{
			PauseWhenHidden: true,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
			Sound:   "",
		},
	}
}

// Path returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "snackd", "config.toml")
}

// Load loads configuration from the specified path. If path is empty, the
// default config path is used. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path, creating parent
// directories if needed. The write goes through a temp file so a crash
// never leaves a half-written config behind.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Display.Position != PositionTop && c.Display.Position != PositionBottom {
		return fmt.Errorf("invalid position %q, must be %q or %q",
			c.Display.Position, PositionTop, PositionBottom)
	}

	if c.Display.Width < 0 || c.Display.Width > 1000 {
		return fmt.Errorf("width must be between 0 and 1000, got %d", c.Display.Width)
	}

	if c.Timeouts.Short.Duration() <= 0 {
		return fmt.Errorf("timeouts.short must be positive, got %s", c.Timeouts.Short.Duration())
	}
	if c.Timeouts.Long.Duration() <= 0 {
		return fmt.Errorf("timeouts.long must be positive, got %s", c.Timeouts.Long.Duration())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}
