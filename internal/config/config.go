// Package config loads the demo server settings from JSON or YAML.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
	"github.com/banshee-data/heatmap.report/internal/presets"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024

// Config holds the server settings. Nil fields fall back to the defaults
// returned by the Get* methods, so partial files are safe.
type Config struct {
	Listen          *string `json:"listen,omitempty" yaml:"listen,omitempty"`
	LogLevel        *string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	AssetsHost      *string `json:"assets_host,omitempty" yaml:"assets_host,omitempty"`
	Seed            *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`

	// Initial control selections.
	Size         *int    `json:"size,omitempty" yaml:"size,omitempty"`
	Mode         *string `json:"mode,omitempty" yaml:"mode,omitempty"`
	ColorScale   *string `json:"color_scale,omitempty" yaml:"color_scale,omitempty"`
	Downsampling *bool   `json:"downsampling,omitempty" yaml:"downsampling,omitempty"`
}

// Load reads a .json, .yaml or .yml file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(cleanPath), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	monitoring.Logf("loaded config from %s", cleanPath)
	return cfg, nil
}

// Validate checks the set fields.
func (c *Config) Validate() error {
	if c.Size != nil && !presets.IsValidSize(heatmap.GridSize(*c.Size)) {
		return fmt.Errorf("%w: size %d (valid: %s)", heatmap.ErrInvalidArgument, *c.Size, presets.ValidSizesString())
	}
	if c.Mode != nil {
		if _, err := presets.ParseMode(*c.Mode); err != nil {
			return err
		}
	}
	if c.ColorScale != nil {
		if _, err := presets.ParseColorScale(*c.ColorScale); err != nil {
			return err
		}
	}
	if c.LogLevel != nil {
		if _, err := monitoring.ParseLevel(*c.LogLevel); err != nil {
			return err
		}
	}
	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}
	return nil
}

// GetListen returns the listen address or ":8080".
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetLogLevel returns the log level name or "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == nil {
		return "info"
	}
	return *c.LogLevel
}

// GetAssetsHost returns the URL prefix echarts.min.js is loaded from.
func (c *Config) GetAssetsHost() string {
	if c.AssetsHost == nil || *c.AssetsHost == "" {
		return ""
	}
	return *c.AssetsHost
}

// GetSeed returns the generator seed and whether one was set.
func (c *Config) GetSeed() (uint64, bool) {
	if c.Seed == nil {
		return 0, false
	}
	return *c.Seed, true
}

// GetShutdownTimeout returns the graceful shutdown window.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetSize returns the initial grid side length.
func (c *Config) GetSize() heatmap.GridSize {
	if c.Size == nil {
		return presets.DefaultSize
	}
	return heatmap.GridSize(*c.Size)
}

// GetMode returns the initial generation mode.
func (c *Config) GetMode() heatmap.Mode {
	if c.Mode == nil {
		return presets.DefaultMode
	}
	m, err := presets.ParseMode(*c.Mode)
	if err != nil {
		return presets.DefaultMode
	}
	return m
}

// GetColorScale returns the initial color scale.
func (c *Config) GetColorScale() string {
	if c.ColorScale == nil {
		return presets.DefaultColorScale
	}
	name, err := presets.ParseColorScale(*c.ColorScale)
	if err != nil {
		return presets.DefaultColorScale
	}
	return name
}

// GetDownsampling returns the initial downsampling flag.
func (c *Config) GetDownsampling() bool {
	if c.Downsampling == nil {
		return presets.DefaultDownsampling
	}
	return *c.Downsampling
}
