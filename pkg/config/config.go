// Package config provides configuration loading and management for slicecompositor.
// It handles loading display settings from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"slicecompositor/internal/models"
	"slicecompositor/pkg/viewport"
)

// RGB is a colour written in YAML as a three element flow sequence
type RGB [3]float64

// Color converts the YAML triple to a model colour
func (c RGB) Color() models.Color {
	return models.Color{R: c[0], G: c[1], B: c[2]}
}

// Element is the YAML form of a models.UIElement
type Element struct {
	NormalColor RGB     `yaml:"normalColor,flow"`
	ActiveColor RGB     `yaml:"activeColor,flow"`
	LineWidth   float64 `yaml:"lineWidth"`
	Visible     bool    `yaml:"visible"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Display parameters shared by every slice view
	Display struct {
		// Interpolation is "nearest" or "linear"
		Interpolation string `yaml:"interpolation"`

		// OverlaysVisible toggles tiled overlays drawn over each tile
		OverlaysVisible bool `yaml:"overlaysVisible"`

		// SegmentationOpacity is the global opacity of the segmentation layer
		SegmentationOpacity float64 `yaml:"segmentationOpacity"`
	} `yaml:"display"`

	// Elements holds per-element appearance keyed by element name
	Elements map[models.UIElementKind]Element `yaml:"elements"`

	// Thumbnail locator parameters
	Thumbnail struct {
		// Enabled turns the zoom thumbnail on
		Enabled bool `yaml:"enabled"`

		// SizePercent is the largest share of the viewport the thumbnail may cover
		SizePercent float64 `yaml:"sizePercent"`

		// MaxSize caps the thumbnail's longest side in pixels
		MaxSize int `yaml:"maxSize"`

		// Margin is the inset from the bottom-left corner in pixels
		Margin int `yaml:"margin"`
	} `yaml:"thumbnail"`

	// Layout is the default tiling of the slice view
	Layout struct {
		Rows int `yaml:"rows"`
		Cols int `yaml:"cols"`
	} `yaml:"layout"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Display.Interpolation = models.InterpolationNearest.String()
	cfg.Display.OverlaysVisible = true
	cfg.Display.SegmentationOpacity = 0.5

	cfg.Elements = map[models.UIElementKind]Element{
		models.ElementBackground2D: {
			NormalColor: RGB{0, 0, 0},
			ActiveColor: RGB{0, 0, 0},
			LineWidth:   1,
			Visible:     true,
		},
		models.ElementZoomThumbnail: {
			NormalColor: RGB{1, 1, 0},
			ActiveColor: RGB{1, 0, 0},
			LineWidth:   1,
			Visible:     true,
		},
	}

	cfg.Thumbnail.Enabled = true
	cfg.Thumbnail.SizePercent = 30
	cfg.Thumbnail.MaxSize = 160
	cfg.Thumbnail.Margin = 5

	cfg.Layout.Rows = 1
	cfg.Layout.Cols = 1

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks value ranges that would otherwise break rendering
func (c *Config) Validate() error {
	if _, ok := models.ParseInterpolation(c.Display.Interpolation); !ok {
		return fmt.Errorf("invalid interpolation %q (must be nearest or linear)", c.Display.Interpolation)
	}
	if c.Display.SegmentationOpacity < 0 || c.Display.SegmentationOpacity > 1 {
		return fmt.Errorf("segmentation opacity %g out of range [0, 1]", c.Display.SegmentationOpacity)
	}
	if c.Layout.Rows < 1 || c.Layout.Cols < 1 {
		return fmt.Errorf("invalid layout %dx%d", c.Layout.Rows, c.Layout.Cols)
	}
	if c.Thumbnail.SizePercent <= 0 || c.Thumbnail.SizePercent > 100 {
		return fmt.Errorf("thumbnail size %g%% out of range (0, 100]", c.Thumbnail.SizePercent)
	}
	return nil
}

// Interpolation returns the texture interpolation mode
func (c *Config) Interpolation() models.Interpolation {
	mode, _ := models.ParseInterpolation(c.Display.Interpolation)
	return mode
}

// UIElement returns the appearance of the named element.
// Unknown elements fall back to the defaults.
func (c *Config) UIElement(kind models.UIElementKind) models.UIElement {
	e, ok := c.Elements[kind]
	if !ok {
		e = DefaultConfig().Elements[kind]
	}
	return models.UIElement{
		NormalColor: e.NormalColor.Color(),
		ActiveColor: e.ActiveColor.Color(),
		LineWidth:   e.LineWidth,
		Visible:     e.Visible,
	}
}

// OverlaysVisible reports whether tiled overlays are drawn
func (c *Config) OverlaysVisible() bool {
	return c.Display.OverlaysVisible
}

// SegmentationOpacity returns the global segmentation opacity
func (c *Config) SegmentationOpacity() float64 {
	return c.Display.SegmentationOpacity
}

// ThumbnailEnabled reports whether the zoom thumbnail is drawn at all
func (c *Config) ThumbnailEnabled() bool {
	return c.Thumbnail.Enabled
}

// ThumbnailSettings returns the thumbnail size and placement options
func (c *Config) ThumbnailSettings() viewport.ThumbnailSettings {
	return viewport.ThumbnailSettings{
		SizePercent: c.Thumbnail.SizePercent,
		MaxSize:     c.Thumbnail.MaxSize,
		Margin:      c.Thumbnail.Margin,
	}
}

// Grid returns the configured default layout
func (c *Config) Grid() models.GridLayout {
	return models.GridLayout{Rows: c.Layout.Rows, Cols: c.Layout.Cols}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
