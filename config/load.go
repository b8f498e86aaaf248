package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. COLOR_WALL_GLOBAL=1
const EnvPrefix = "COLOR_WALL"

// ConfigFlag names the flag selecting an explicit config file
const ConfigFlag = "config"

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"global":         "global",
	"only-focused":   "only_when_focused",
	"backend":        "backend",
	"color":          "color",
	"palette":        "palette",
	"columns":        "columns",
	"rows":           "rows",
	"seed":           "seed",
	"seat":           "seat",
	"kitty-keyboard": "kitty_keyboard",
	"quit-key":       "quit_keys",
	"debug":          "debug",
	"log-file":       "log_file",
	"log-level":      "log_level",
}

// BindFlags registers every option on flags with DefaultConfig values
func BindFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()

	flags.String(ConfigFlag, "", "config file (default $XDG_CONFIG_HOME/color-wall/config.yaml)")
	flags.BoolP("global", "g", d.Global, "read global keyboard presses from /dev/input (needs root or the input group)")
	flags.Bool("only-focused", d.OnlyWhenFocused, "with --global, only react while the terminal has focus")
	flags.String("backend", d.Backend, "terminal backend: ansi or tcell")
	flags.String("color", d.Color, "color mode: auto, 256 or truecolor")
	flags.String("palette", d.Palette, "block colors: random, happy, warm or pastel")
	flags.Int("columns", d.Columns, "blocks per row")
	flags.Int("rows", d.Rows, "blocks per column")
	flags.Uint64("seed", d.Seed, "color seed, 0 picks one at random")
	flags.String("seat", d.Seat, "udev seat whose keyboards --global reads")
	flags.Bool("kitty-keyboard", d.KittyKeyboard, "request key release reporting from kitty protocol terminals")
	flags.StringSlice("quit-key", d.QuitKeys, "keys that quit, e.g. q, ctrl+c, escape")
	flags.Bool("debug", d.Debug, "write a debug log under logs/")
	flags.String("log-file", d.LogFile, "write the log to this file")
	flags.String("log-level", d.LogLevel, "log level: trace, debug, info, warn or error")

	flags.SetNormalizeFunc(NormalizeFlagName)
}

// NormalizeFlagName accepts --only-when-focused as --only-focused
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "only-when-focused" {
		name = "only-focused"
	}
	return pflag.NormalizedName(name)
}

// Load resolves the configuration from flags, environment and config file.
// An explicit --config file must exist; the default one is optional.
func Load(flags *pflag.FlagSet) (Settings, error) {
	v, err := newViper(flags)
	if err != nil {
		return Settings{}, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg.Validate()
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	d := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("global", d.Global)
	v.SetDefault("only_when_focused", d.OnlyWhenFocused)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("color", d.Color)
	v.SetDefault("palette", d.Palette)
	v.SetDefault("columns", d.Columns)
	v.SetDefault("rows", d.Rows)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("seat", d.Seat)
	v.SetDefault("kitty_keyboard", d.KittyKeyboard)
	v.SetDefault("quit_keys", d.QuitKeys)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	path := ""
	if flags != nil {
		if f := flags.Lookup(ConfigFlag); f != nil {
			path = f.Value.String()
		}
	}
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config %s: %w", ErrInvalid, path, err)
		}
		return v, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return v, nil
	}
	v.SetConfigName(strings.TrimSuffix(filepath.Base(defaultPath), filepath.Ext(defaultPath)))
	v.AddConfigPath(filepath.Dir(defaultPath))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %w", ErrInvalid, err)
		}
	}
	return v, nil
}

// Marshal renders cfg as YAML
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes DefaultConfig to path, or DefaultConfigPath when path
// is empty, and returns the path written
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
