package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings from flags, REQRESP_* environment variables and
// an optional reqresp.yaml, in that order of precedence.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Source         string `mapstructure:"source"`
	Format         string `mapstructure:"format"`
	Sniff          bool   `mapstructure:"sniff"`
	MaxDecodedSize int64  `mapstructure:"max_decoded_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("source", "other")
	v.SetDefault("format", "text")
	v.SetDefault("sniff", false)
	v.SetDefault("max_decoded_size", 0)
}

// LoadConfig reads configuration into v. With an empty file name a
// reqresp.yaml in the working directory is used if present.
func LoadConfig(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("REQRESP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("reqresp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch cfg.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", cfg.Format)
	}
	return cfg, nil
}
