// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package config provides configuration parsing for the epdcal daemon.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AmnesiaBeing/epdcal/geom"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Panel drivers.
const (
	DriverMemory    = "memory"
	DriverWaveshare = "waveshare2in13v4"
)

// Config is the daemon configuration.
type Config struct {
	// Panel selects and sizes the display.
	Panel PanelConfig `yaml:"panel"`
	// Refresh tunes the refresh scheduler and engine pacing.
	Refresh RefreshConfig `yaml:"refresh"`
	// Text tunes measurement and wrapping.
	Text TextConfig `yaml:"text"`
	// Regions are the scheduler regions. Empty derives them from named
	// nodes of the layout.
	Regions []RegionConfig `yaml:"regions"`
	// Fonts maps layout font sizes to font files.
	Fonts []FontConfig `yaml:"fonts"`
	// Icons locates the icon bitmaps.
	Icons IconsConfig `yaml:"icons"`
	// Layout locates the compiled layout pool.
	Layout LayoutConfig `yaml:"layout"`
	// Log sets the log level.
	Log LogConfig `yaml:"log"`
}

// PanelConfig describes the display.
type PanelConfig struct {
	// Driver is "memory" or "waveshare2in13v4".
	Driver string `yaml:"driver"`
	// Width and Height size the memory panel. The hardware driver reports
	// its own size.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Rotate turns a portrait controller into a landscape canvas.
	Rotate bool `yaml:"rotate"`
	// SPIPort names the SPI port; empty selects the first one.
	SPIPort string `yaml:"spi_port"`
	// SnapshotDir receives a PNG per flush of the memory panel.
	SnapshotDir string `yaml:"snapshot_dir"`
}

// RefreshConfig tunes refresh pacing.
type RefreshConfig struct {
	// MaxPartialRefreshes forces a full refresh once a region has been
	// partially refreshed this many times.
	MaxPartialRefreshes int `yaml:"max_partial_refreshes"`
	// SettleDelay is waited after every flush.
	SettleDelay Duration `yaml:"settle_delay"`
	// FullRefreshInterval forces a full refresh after this long. Zero
	// disables it.
	FullRefreshInterval Duration `yaml:"full_refresh_interval"`
	// TickInterval is how often the daemon requests a partial refresh.
	TickInterval Duration `yaml:"tick_interval"`
}

// TextConfig mirrors text.Options.
type TextConfig struct {
	SpaceWidth   int `yaml:"space_width"`
	CharSpacing  int `yaml:"char_spacing"`
	DefaultWidth int `yaml:"default_width"`
	MaxLines     int `yaml:"max_lines"`
	// SkipOnMissing skips elements with unresolved placeholders instead of
	// drawing them with empty substitutions.
	SkipOnMissing bool `yaml:"skip_on_missing"`
}

// RegionConfig is one scheduler region.
type RegionConfig struct {
	ID     string `yaml:"id"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Rect returns the region bounds.
func (r RegionConfig) Rect() geom.Rect { return geom.R(r.X, r.Y, r.Width, r.Height) }

// FontConfig binds a layout font size to a font.
type FontConfig struct {
	// Size is the font size index used by text nodes.
	Size uint8 `yaml:"size"`
	// Path is a TrueType or OpenType file. Empty uses the built-in Go
	// Regular face; "basic" uses the fixed 7x13 face.
	Path string `yaml:"path"`
	// Points is the rasterization size in points at 72 DPI.
	Points float64 `yaml:"points"`
}

// IconsConfig locates icon bitmaps.
type IconsConfig struct {
	// Dir holds PNG icons named by key, e.g. weather/rain.png.
	Dir string `yaml:"dir"`
	// Size fits icons into a size x size box. Zero keeps source sizes.
	Size int `yaml:"size"`
	// Threshold is the luma below which a pixel is ink.
	Threshold uint8 `yaml:"threshold"`
	// Preload loads every icon at startup instead of on first use.
	Preload bool `yaml:"preload"`
}

// LayoutConfig locates the compiled layout.
type LayoutConfig struct {
	PoolPath string `yaml:"pool_path"`
}

// LogConfig sets logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: line %d: %w", n.Line, err)
	}
	d.Duration = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns a Config populated with defaults for the 2.13" panel.
func Default() *Config {
	return &Config{
		Panel: PanelConfig{
			Driver: DriverMemory,
			Width:  250,
			Height: 122,
		},
		Refresh: RefreshConfig{
			MaxPartialRefreshes: 5,
			SettleDelay:         Duration{2 * time.Second},
			FullRefreshInterval: Duration{6 * time.Hour},
			TickInterval:        Duration{time.Minute},
		},
		Text: TextConfig{
			DefaultWidth: 8,
		},
		Fonts: []FontConfig{
			{Size: 1, Points: 12},
			{Size: 2, Points: 16},
			{Size: 3, Points: 24},
		},
		Icons: IconsConfig{
			Threshold: 128,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets a service unit tweak a shared file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EPDCAL_PANEL_DRIVER"); v != "" {
		cfg.Panel.Driver = v
	}
	if v := os.Getenv("EPDCAL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EPDCAL_POOL"); v != "" {
		cfg.Layout.PoolPath = v
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration for required fields and logical
// consistency.
func (c *Config) Validate() error {
	switch c.Panel.Driver {
	case DriverMemory:
		if c.Panel.Width <= 0 || c.Panel.Height <= 0 {
			return fmt.Errorf("%w: panel size must be positive, got %dx%d", ErrInvalid, c.Panel.Width, c.Panel.Height)
		}
	case DriverWaveshare:
	default:
		return fmt.Errorf("%w: panel.driver must be %q or %q, got %q", ErrInvalid, DriverMemory, DriverWaveshare, c.Panel.Driver)
	}

	if c.Refresh.MaxPartialRefreshes < 0 {
		return fmt.Errorf("%w: refresh.max_partial_refreshes must be non-negative, got %d", ErrInvalid, c.Refresh.MaxPartialRefreshes)
	}
	for name, d := range map[string]Duration{
		"settle_delay":          c.Refresh.SettleDelay,
		"full_refresh_interval": c.Refresh.FullRefreshInterval,
		"tick_interval":         c.Refresh.TickInterval,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%w: refresh.%s must be non-negative, got %v", ErrInvalid, name, d)
		}
	}

	seen := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		if r.ID == "" {
			return fmt.Errorf("%w: regions[%d].id is required", ErrInvalid, i)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: regions[%d].id %q is duplicated", ErrInvalid, i, r.ID)
		}
		seen[r.ID] = true
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("%w: regions[%d] (%s) must have a positive size", ErrInvalid, i, r.ID)
		}
	}

	sizes := make(map[uint8]bool, len(c.Fonts))
	for i, f := range c.Fonts {
		if sizes[f.Size] {
			return fmt.Errorf("%w: fonts[%d].size %d is duplicated", ErrInvalid, i, f.Size)
		}
		sizes[f.Size] = true
		if f.Path != "basic" && f.Points <= 0 {
			return fmt.Errorf("%w: fonts[%d].points must be positive", ErrInvalid, i)
		}
	}

	if c.Icons.Size < 0 {
		return fmt.Errorf("%w: icons.size must be non-negative, got %d", ErrInvalid, c.Icons.Size)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
