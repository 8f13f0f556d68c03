// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

var (
	// RootDir is the directory for seqcmp's settings and history
	RootDir = rootDir()

	// RootSettingsFile is the default settings file. It's optional
	RootSettingsFile = filepath.Join(RootDir, "settings.yaml")

	// EnvPrefix prefixes environment variables that override settings,
	// ex: SEQCMP_HISTORY_DIR
	EnvPrefix = "SEQCMP"
)

// HistoryConfig is settings for the history of past comparisons
type HistoryConfig struct {
	// the directory of the history database
	Dir string `mapstructure:"dir"`

	// keep history in memory only, for the life of the process
	InMemory bool `mapstructure:"in-memory"`
}

// ExportConfig is settings for writing reports to files
type ExportConfig struct {
	// default file name for an exported report
	File string `mapstructure:"file"`

	// default file name for an exported history entry
	HistoryFile string `mapstructure:"history-file"`
}

// ServerConfig is settings for 'seqcmp serve'
type ServerConfig struct {
	// address to listen on, ex: ":8080"
	Addr string `mapstructure:"addr"`

	// reload the served file when it changes on disk
	Watch bool `mapstructure:"watch"`

	// write trace spans to stdout
	Trace bool `mapstructure:"trace"`
}

// LogConfig is settings for the structured logger
type LogConfig struct {
	// one of debug, info, warn, error
	Level string `mapstructure:"level"`

	// text or json
	Format string `mapstructure:"format"`
}

// Config is the root-level settings struct and is a mix
// of settings available in settings.yaml and those
// available from the command line
type Config struct {
	// max number of alignments computed at once
	Workers int `mapstructure:"workers"`

	// terminal styling: auto, always or never
	Color string `mapstructure:"color"`

	// residues per line in the terminal view. 0 is no wrapping
	Wrap int `mapstructure:"wrap"`

	// History settings
	History HistoryConfig `mapstructure:"history"`

	// Export settings
	Export ExportConfig `mapstructure:"export"`

	// Server settings
	Server ServerConfig `mapstructure:"server"`

	// Log settings
	Log LogConfig `mapstructure:"log"`
}

// SetDefaults sets the default for every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("color", "auto")
	v.SetDefault("wrap", 80)
	v.SetDefault("history.dir", filepath.Join(RootDir, "history"))
	v.SetDefault("history.in-memory", false)
	v.SetDefault("export.file", "comparisons.txt")
	v.SetDefault("export.history-file", "comparison.txt")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.watch", false)
	v.SetDefault("server.trace", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads settings into a Config: flags already bound to v, then the
// environment, then the settings file, then defaults. A missing settings file
// is only an error if it isn't the default one.
func Load(v *viper.Viper, settingsFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if settingsFile != "" {
		if _, err := os.Stat(settingsFile); err == nil || settingsFile != RootSettingsFile {
			v.SetConfigFile(settingsFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read settings file %s: %w", settingsFile, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// New returns a Config populated from the global Viper instance.
func New() (*Config, error) {
	return Load(viper.GetViper(), viper.GetString("settings"))
}

// Validate checks that settings are within their allowed values.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Wrap < 0 {
		errs = append(errs, fmt.Errorf("wrap must be >= 0, got %d", c.Wrap))
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}

	if !c.History.InMemory && c.History.Dir == "" {
		errs = append(errs, errors.New("history dir is required unless history is in memory"))
	}

	return errors.Join(errs...)
}

// SlogLevel is the slog level for the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

func rootDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seqcmp"
	}
	return filepath.Join(home, ".seqcmp")
}
