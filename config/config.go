// Package config defines the viewer configuration, its defaults and
// validation, and lenient parsing of initial view parameters.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DataConfig locates datasets.
type DataConfig struct {
	Dir   string   `mapstructure:"dir"`
	Watch bool     `mapstructure:"watch"`
	S3    S3Config `mapstructure:"s3"`
}

// S3Config selects an S3 bucket as the dataset source when Bucket is set.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// RenderConfig tunes progressive rendering.
type RenderConfig struct {
	BatchSize int `mapstructure:"batch_size" validate:"min=2"`
}

// CameraConfig tunes the camera limits.
type CameraConfig struct {
	MarginX         float64 `mapstructure:"margin_x" validate:"gte=0"`
	MarginY         float64 `mapstructure:"margin_y" validate:"gte=0"`
	MinVisibleUnits float64 `mapstructure:"min_visible_units" validate:"gt=0"`
}

// AxisConfig tunes axis labels.
type AxisConfig struct {
	MinSpacing float64 `mapstructure:"min_spacing" validate:"gt=0"`
}

// HighlightConfig sizes highlight markers.
type HighlightConfig struct {
	Factor float64 `mapstructure:"factor" validate:"gt=0"`
}

// ViewConfig holds initial view parameters as given by the user. They are
// parsed leniently; see ParseScale and ParseCenter.
type ViewConfig struct {
	Selector string `mapstructure:"selector"`
	Scale    string `mapstructure:"scale"`
	Center   string `mapstructure:"center"`
	Width    int    `mapstructure:"width" validate:"min=1"`
	Height   int    `mapstructure:"height" validate:"min=1"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// Config is the root configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Render    RenderConfig    `mapstructure:"render"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Axis      AxisConfig      `mapstructure:"axis"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Hover     bool            `mapstructure:"hover"`
	View      ViewConfig      `mapstructure:"view"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

var validate = validator.New()

// Validate checks the fully-populated Config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %s", formatValidationError(err))
	}
	if c.Data.Dir == "" && c.Data.S3.Bucket == "" {
		return errors.New("config: one of data.dir or data.s3.bucket is required")
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}
