package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/pdf2scene/internal/system"
)

type Config struct {
	InputPath      string  `yaml:"input" toml:"input"`
	OutputDir      string  `yaml:"output" toml:"output"`
	LegosDir       string  `yaml:"legos" toml:"legos"`
	Title          string  `yaml:"title" toml:"title"`
	Width          int     `yaml:"width" toml:"width"`
	Height         int     `yaml:"height" toml:"height"`
	Workers        int     `yaml:"workers" toml:"workers"`
	DPI            int     `yaml:"dpi" toml:"dpi"`
	DwellSeconds   float64 `yaml:"dwell" toml:"dwell"`
	Accents        bool    `yaml:"accents" toml:"accents"`
	Decorations    bool    `yaml:"decorations" toml:"decorations"`
	StrictGeometry bool    `yaml:"strict_geometry" toml:"strict_geometry"`
	ThumbWidth     int     `yaml:"thumb_width" toml:"thumb_width"`
	BaseURL        string  `yaml:"base_url" toml:"base_url"`
	ShowStats      bool    `yaml:"stats" toml:"stats"`
	Presentation   bool    `yaml:"presentation" toml:"presentation"`
	BuildVersion   string  `yaml:"-" toml:"-"`
}

// SceneParams is the slice of Config handed to the scene compiler.
type SceneParams struct {
	Width, Height int
	DwellSeconds  float64
	Accents       bool
	Decorations   bool
}

func Default() *Config {
	return &Config{
		InputPath:    ".",
		OutputDir:    "dist",
		Title:        "Page→Scene Production Pipeline",
		Width:        1920,
		Height:       1080,
		Workers:      system.DefaultWorkers(),
		DPI:          150,
		DwellSeconds: 3,
		ThumbWidth:   320,
		Presentation: true,
	}
}

// LegosPath returns the descriptor directory, defaulting to <output>/legos.
func (c *Config) LegosPath() string {
	if c.LegosDir != "" {
		return c.LegosDir
	}
	return filepath.Join(c.OutputDir, "legos")
}

func (c *Config) Params() SceneParams {
	return SceneParams{
		Width:        c.Width,
		Height:       c.Height,
		DwellSeconds: c.DwellSeconds,
		Accents:      c.Accents,
		Decorations:  c.Decorations,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid canvas %dx%d", c.Width, c.Height))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.DwellSeconds <= 0 {
		errs = append(errs, fmt.Errorf("dwell must be positive, got %.2f", c.DwellSeconds))
	}
	if c.ThumbWidth < 0 {
		errs = append(errs, fmt.Errorf("thumb_width must be >= 0, got %d", c.ThumbWidth))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is empty"))
	}
	return errors.Join(errs...)
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
