// Package config loads glyphcore's runtime configuration.
//
// Values are layered, later layers winning:
//   - built-in defaults
//   - a YAML file named by --config or GLYPHCORE_CONFIG (no discovery)
//   - GLYPHCORE_* environment variables
//   - command-line flags that were set explicitly
//
// The content directory may also be given as the single positional argument.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Save file formats.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "GLYPHCORE_CONFIG"

// Config is the runtime configuration of the glyphcore command.
type Config struct {
	// ContentDir holds the Lua content files. Empty means the built-in
	// standard catalog.
	ContentDir string `yaml:"content_dir" env:"GLYPHCORE_CONTENT_DIR"`

	// SaveDir is where /save and /load read and write save files.
	SaveDir string `yaml:"save_dir" env:"GLYPHCORE_SAVE_DIR"`

	// DBPath is the SQLite database mirroring streams and save state.
	// Empty disables the database.
	DBPath string `yaml:"db_path" env:"GLYPHCORE_DB_PATH"`

	// SaveFormat is "json" or "cbor".
	SaveFormat string `yaml:"save_format" env:"GLYPHCORE_SAVE_FORMAT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"GLYPHCORE_LOG_LEVEL"`

	// Plain forces the line-oriented CLI instead of the TUI.
	Plain bool `yaml:"plain" env:"GLYPHCORE_PLAIN"`

	// Script replays commands from a file; implies Plain.
	Script string `yaml:"script" env:"GLYPHCORE_SCRIPT"`

	// Trace prints effects and events after every command.
	Trace bool `yaml:"trace" env:"GLYPHCORE_TRACE"`

	// Seed seeds the persisted streams. 0 seeds from the clock.
	Seed uint32 `yaml:"seed" env:"GLYPHCORE_SEED"`

	// PreviewSeed seeds the preview stream. 0 seeds from the clock.
	PreviewSeed uint32 `yaml:"preview_seed" env:"GLYPHCORE_PREVIEW_SEED"`

	// ShowVersion is set by --version.
	ShowVersion bool `yaml:"-" env:"-"`
}

// Default returns the configuration used before any layer is applied.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		SaveDir:    filepath.Join(home, ".glyphcore", "saves"),
		SaveFormat: FormatJSON,
		LogLevel:   "warn",
	}
}

// Load builds the configuration from args (without the program name).
// It returns pflag.ErrHelp when --help was requested.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("glyphcore", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to a YAML config file (or "+ConfigEnv+")")
	flagCfg := &Config{}
	bindFlags(fs, flagCfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyFlags(fs, flagCfg, cfg)

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.ContentDir = rest[0]
	default:
		return nil, fmt.Errorf("unexpected argument: %s", rest[1])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.ContentDir, "content", "", "directory of Lua content files")
	fs.StringVar(&c.SaveDir, "save-dir", "", "directory for save files")
	fs.StringVar(&c.DBPath, "db", "", "SQLite database path (empty disables it)")
	fs.StringVar(&c.SaveFormat, "format", "", "save file format: json or cbor")
	fs.StringVar(&c.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&c.Plain, "plain", false, "use the plain line-oriented interface")
	fs.StringVar(&c.Script, "script", "", "replay commands from a file")
	fs.BoolVar(&c.Trace, "trace", false, "print effects and events after each command")
	fs.Uint32Var(&c.Seed, "seed", 0, "seed for the persisted streams (0 = clock)")
	fs.Uint32Var(&c.PreviewSeed, "preview-seed", 0, "seed for the preview stream (0 = clock)")
	fs.BoolVar(&c.ShowVersion, "version", false, "print the version and exit")
}

// applyFlags copies explicitly set flags over dst.
func applyFlags(fs *pflag.FlagSet, src, dst *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "content":
			dst.ContentDir = src.ContentDir
		case "save-dir":
			dst.SaveDir = src.SaveDir
		case "db":
			dst.DBPath = src.DBPath
		case "format":
			dst.SaveFormat = src.SaveFormat
		case "log-level":
			dst.LogLevel = src.LogLevel
		case "plain":
			dst.Plain = src.Plain
		case "script":
			dst.Script = src.Script
		case "trace":
			dst.Trace = src.Trace
		case "seed":
			dst.Seed = src.Seed
		case "preview-seed":
			dst.PreviewSeed = src.PreviewSeed
		case "version":
			dst.ShowVersion = src.ShowVersion
		}
	})
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	var errs []error
	c.SaveFormat = strings.ToLower(strings.TrimSpace(c.SaveFormat))
	if c.SaveFormat != FormatJSON && c.SaveFormat != FormatCBOR {
		errs = append(errs, fmt.Errorf("save_format must be %q or %q, got %q", FormatJSON, FormatCBOR, c.SaveFormat))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// SaveExt returns the file extension for the configured save format.
func (c *Config) SaveExt() string {
	if c.SaveFormat == FormatCBOR {
		return ".cbor"
	}
	return ".json"
}
