package config

import (
	"dasa.cc/primeview/axis"
	"dasa.cc/primeview/camera"
	"dasa.cc/primeview/highlight"
	"dasa.cc/primeview/render"
)

const (
	DefaultDataDir  = "data"
	DefaultLogLevel = "info"
	DefaultWidth    = 1024
	DefaultHeight   = 768
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Data.Dir == "" && cfg.Data.S3.Bucket == "" {
		cfg.Data.Dir = DefaultDataDir
	}

	if cfg.Render.BatchSize == 0 {
		cfg.Render.BatchSize = render.DefaultBatchSize
	}

	if cfg.Camera.MarginX == 0 {
		cfg.Camera.MarginX = camera.DefaultMargin
	}
	if cfg.Camera.MarginY == 0 {
		cfg.Camera.MarginY = camera.DefaultMargin
	}
	if cfg.Camera.MinVisibleUnits == 0 {
		cfg.Camera.MinVisibleUnits = camera.DefaultMinVisibleUnits
	}

	if cfg.Axis.MinSpacing == 0 {
		cfg.Axis.MinSpacing = axis.DefaultMinSpacing
	}

	if cfg.Highlight.Factor == 0 {
		cfg.Highlight.Factor = highlight.DefaultFactor
	}

	if cfg.View.Width == 0 {
		cfg.View.Width = DefaultWidth
	}
	if cfg.View.Height == 0 {
		cfg.View.Height = DefaultHeight
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{Hover: true}
	ApplyDefaults(cfg)
	return cfg
}
