// Package config resolves color-wall settings from flags, COLOR_WALL_*
// environment variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lixenwraith/color-wall/device"
	"github.com/lixenwraith/color-wall/input"
	"github.com/lixenwraith/color-wall/terminal"
	"github.com/lixenwraith/color-wall/wall"
)

// ErrInvalid marks errors caused by bad user input rather than the environment
var ErrInvalid = errors.New("invalid configuration")

// Config is the user-facing configuration, as written in the YAML file
type Config struct {
	Global          bool     `mapstructure:"global" yaml:"global"`
	OnlyWhenFocused bool     `mapstructure:"only_when_focused" yaml:"only_when_focused"`
	Backend         string   `mapstructure:"backend" yaml:"backend"`
	Color           string   `mapstructure:"color" yaml:"color"`
	Palette         string   `mapstructure:"palette" yaml:"palette"`
	Columns         int      `mapstructure:"columns" yaml:"columns"`
	Rows            int      `mapstructure:"rows" yaml:"rows"`
	Seed            uint64   `mapstructure:"seed" yaml:"seed"`
	Seat            string   `mapstructure:"seat" yaml:"seat"`
	KittyKeyboard   bool     `mapstructure:"kitty_keyboard" yaml:"kitty_keyboard"`
	QuitKeys        []string `mapstructure:"quit_keys" yaml:"quit_keys"`
	Debug           bool     `mapstructure:"debug" yaml:"debug"`
	LogFile         string   `mapstructure:"log_file" yaml:"log_file"`
	LogLevel        string   `mapstructure:"log_level" yaml:"log_level"`
}

// Backend names
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"
)

// Limits on the wall grid
const (
	MaxColumns = 64
	MaxRows    = 64
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Backend:       BackendANSI,
		Color:         "auto",
		Palette:       "random",
		Columns:       4,
		Rows:          2,
		Seat:          device.DefaultSeat,
		KittyKeyboard: true,
		QuitKeys:      []string{"q", "ctrl+c"},
		LogLevel:      "info",
	}
}

// DefaultConfigPath is where Load looks for a config file when none is given
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "color-wall", "config.yaml"), nil
}

// Settings is a validated Config with its string options resolved
type Settings struct {
	Config

	ColorMode  terminal.ColorMode
	WallColors wall.Palette
	QuitKeySet input.KeySet
}

// Validate checks every option and resolves the parsed forms. All failures
// wrap ErrInvalid.
func (c Config) Validate() (Settings, error) {
	s := Settings{Config: c}

	switch strings.ToLower(c.Backend) {
	case BackendANSI, BackendTcell:
		s.Config.Backend = strings.ToLower(c.Backend)
	default:
		return Settings{}, invalid("backend %q (want ansi or tcell)", c.Backend)
	}

	mode, err := terminal.ParseColorMode(c.Color)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s.ColorMode = mode

	palette, err := wall.ParsePalette(c.Palette)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s.WallColors = palette

	if c.Columns < 1 || c.Columns > MaxColumns {
		return Settings{}, invalid("columns %d (want 1-%d)", c.Columns, MaxColumns)
	}
	if c.Rows < 1 || c.Rows > MaxRows {
		return Settings{}, invalid("rows %d (want 1-%d)", c.Rows, MaxRows)
	}

	if strings.TrimSpace(c.Seat) == "" {
		return Settings{}, invalid("seat must not be empty")
	}

	if len(c.QuitKeys) == 0 {
		return Settings{}, invalid("at least one quit key is required")
	}
	keys, err := input.ParseKeySet(c.QuitKeys)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: quit_keys: %w", ErrInvalid, err)
	}
	s.QuitKeySet = keys

	level := strings.ToLower(c.LogLevel)
	if !validLogLevel(level) {
		return Settings{}, invalid("log level %q (want %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	s.Config.LogLevel = level

	return s, nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
