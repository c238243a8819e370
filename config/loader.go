package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of all settings.
const envPrefix = "PRIMEVIEW"

// keys lists every setting so AutomaticEnv can resolve them without a file.
var keys = []string{
	"data.dir", "data.watch",
	"data.s3.bucket", "data.s3.prefix", "data.s3.region", "data.s3.endpoint",
	"render.batch_size",
	"camera.margin_x", "camera.margin_y", "camera.min_visible_units",
	"axis.min_spacing",
	"highlight.factor",
	"hover",
	"view.selector", "view.scale", "view.center", "view.width", "view.height",
	"log.level", "log.development",
	"metrics.addr",
}

// newViper builds a Viper with YAML files, PRIMEVIEW_ env overrides and a
// key replacer so "data.s3.bucket" resolves to PRIMEVIEW_DATA_S3_BUCKET.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.SetDefault("hover", true)
	return v
}

// Load reads the YAML file at path, if any, merges PRIMEVIEW_* environment
// overrides, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	return LoadWith(newViper(), path)
}

// LoadWith is Load using v, which callers may have bound to command flags.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// New returns the Viper instance Load uses, for binding flags before LoadWith.
func New() *viper.Viper { return newViper() }

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
