package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/render"
)

const validConfigYAML = `
data:
  dir: "./datasets"
  watch: true
render:
  batch_size: 250
camera:
  margin_x: 20
axis:
  min_spacing: 60
view:
  selector: "2"
  scale: "12.5"
  center: "10,4"
log:
  level: debug
metrics:
  addr: "localhost:9100"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "primeview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "./datasets", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, 250, cfg.Render.BatchSize)
	assert.Equal(t, 20.0, cfg.Camera.MarginX)
	assert.Equal(t, 40.0, cfg.Camera.MarginY, "default margin")
	assert.Equal(t, 60.0, cfg.Axis.MinSpacing)
	assert.Equal(t, 1.5, cfg.Highlight.Factor)
	assert.True(t, cfg.Hover)
	assert.Equal(t, "2", cfg.View.Selector)
	assert.Equal(t, DefaultWidth, cfg.View.Width)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "localhost:9100", cfg.Metrics.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PRIMEVIEW_RENDER_BATCH_SIZE", "64")
	t.Setenv("PRIMEVIEW_HOVER", "false")
	t.Setenv("PRIMEVIEW_DATA_S3_BUCKET", "datasets")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Render.BatchSize)
	assert.False(t, cfg.Hover)
	assert.Equal(t, "datasets", cfg.Data.S3.Bucket)
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.Data.Dir)
	assert.Equal(t, render.DefaultBatchSize, cfg.Render.BatchSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"batch size", func(c *Config) { c.Render.BatchSize = 1 }},
		{"margin", func(c *Config) { c.Camera.MarginX = -1 }},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = "not an address" }},
		{"s3 endpoint", func(c *Config) { c.Data.S3.Endpoint = "::" }},
		{"no source", func(c *Config) { c.Data.Dir = "" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{" 0.5 ", 0.5, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		have, ok := ParseScale(tt.in)
		if have != tt.want || ok != tt.ok {
			t.Errorf("ParseScale(%q): have %v %v, want %v %v", tt.in, have, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCenter(t *testing.T) {
	tests := []struct {
		in   string
		want geom.Point
		ok   bool
	}{
		{"10,4", geom.Pt(10, 4), true},
		{"1.5 -2", geom.Pt(1.5, -2), true},
		{"3, 7", geom.Pt(3, 7), true},
		{"3", geom.ZP, false},
		{"1,2,3", geom.ZP, false},
		{"x,2", geom.ZP, false},
		{"NaN,1", geom.ZP, false},
	}
	for _, tt := range tests {
		have, ok := ParseCenter(tt.in)
		if have != tt.want || ok != tt.ok {
			t.Errorf("ParseCenter(%q): have %v %v, want %v %v", tt.in, have, ok, tt.want, tt.ok)
		}
	}
}
