// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/safedep/termbar/tui"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Bar      BarConfig      `mapstructure:"bar"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Run      RunConfig      `mapstructure:"run"`
}

// BarConfig holds progress bar appearance settings.
type BarConfig struct {
	BaseMarker    string `mapstructure:"base_marker"`
	DoneMarker    string `mapstructure:"done_marker"`
	CurrentMarker string `mapstructure:"current_marker"`
	ShowPercents  bool   `mapstructure:"show_percents"`
	ShowEstimate  bool   `mapstructure:"show_estimate"`
	// LiveWidth re-queries the terminal width on every draw.
	LiveWidth bool `mapstructure:"live_width"`
}

// TerminalConfig holds terminal detection settings.
type TerminalConfig struct {
	// DefaultWidth is used when no terminal is attached.
	DefaultWidth int `mapstructure:"default_width"`
}

// RunConfig holds settings for the synthetic run command.
type RunConfig struct {
	Total    float64       `mapstructure:"total"`
	Step     float64       `mapstructure:"step"`
	Interval time.Duration `mapstructure:"interval"`
}

// Paths holds resolved filesystem paths.
type Paths struct {
	ConfigFile string
	ConfigDir  string
}

// Load loads configuration from the given path or default locations.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config type
	v.SetConfigType("yaml")

	// Determine config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		paths := ResolvePaths()

		v.SetConfigName("config")
		v.AddConfigPath(paths.ConfigDir)
	}

	// Bind environment variables
	v.SetEnvPrefix("TERMBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Validate config
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config with all default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// ResolvePaths returns the resolved filesystem paths for the current platform.
func ResolvePaths() *Paths {
	configDir := getConfigDir()

	return &Paths{
		ConfigFile: filepath.Join(configDir, "config.yaml"),
		ConfigDir:  configDir,
	}
}

// BarOptions maps the bar and terminal settings onto options for a bar
// drawn on w. The width falls back to Terminal.DefaultWidth when w is
// not a terminal.
func (c *Config) BarOptions(w io.Writer) []tui.BarOption {
	return []tui.BarOption{
		tui.WithWriter(w),
		tui.WithWidthSource(tui.TerminalWidthFunc(w, c.Terminal.DefaultWidth)),
		tui.WithBaseMarker(c.Bar.BaseMarker),
		tui.WithDoneMarker(c.Bar.DoneMarker),
		tui.WithCurrentMarker(c.Bar.CurrentMarker),
		tui.WithPercents(c.Bar.ShowPercents),
		tui.WithEstimate(c.Bar.ShowEstimate),
		tui.WithLiveWidth(c.Bar.LiveWidth),
	}
}
