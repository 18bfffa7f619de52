package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/handiism/image-downloader/internal/model"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. IMGDL_CONCURRENCY=10.
const EnvPrefix = "IMGDL"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	OutputDir     string        `mapstructure:"output_dir"`
	Concurrency   int           `mapstructure:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout"`
	BatchDeadline time.Duration `mapstructure:"batch_deadline"`

	// RejectUnknown turns unsniffable payloads into failures instead of
	// writing them under their original name.
	RejectUnknown bool `mapstructure:"reject_unknown"`

	// Proxy settings
	ProxyType    string `mapstructure:"proxy_type"` // none, http, https, socks5
	ProxyAddress string `mapstructure:"proxy_address"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // console, json

	// MetricsAddress enables a Prometheus /metrics endpoint when set.
	MetricsAddress string `mapstructure:"metrics_address"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:     "images",
		Concurrency:   50,
		Timeout:       20 * time.Second,
		BatchDeadline: 90 * time.Second,
		ProxyType:     "none",
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Load reads settings from a config file and the environment.
//
// When path is empty, "imgdl.{yaml,json,toml}" is looked up in the current
// directory and ./config; a missing file is not an error. Environment
// variables with the IMGDL_ prefix override file values.
//
// Example:
//
//	settings, err := config.Load("")
//	// IMGDL_TIMEOUT=5s IMGDL_PROXY_TYPE=socks5 ...
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("imgdl")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return settings, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("batch_deadline", d.BatchDeadline)
	v.SetDefault("reject_unknown", d.RejectUnknown)
	v.SetDefault("proxy_type", d.ProxyType)
	v.SetDefault("proxy_address", d.ProxyAddress)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("metrics_address", d.MetricsAddress)
}

// Validate checks settings for values the downloader cannot work with.
func (s *Settings) Validate() error {
	if s.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if s.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.BatchDeadline <= 0 {
		return fmt.Errorf("batch_deadline must be positive, got %s", s.BatchDeadline)
	}

	switch strings.ToLower(s.ProxyType) {
	case "", "none":
	case "http", "https", "socks5":
		if s.ProxyAddress == "" {
			return fmt.Errorf("proxy_address is required for proxy_type %q", s.ProxyType)
		}
	default:
		return fmt.Errorf("unsupported proxy_type %q", s.ProxyType)
	}

	return nil
}

// Proxy returns the configured proxy, or nil when none is set.
func (s *Settings) Proxy() *model.Proxy {
	scheme := strings.ToLower(s.ProxyType)
	if scheme == "" || scheme == "none" || s.ProxyAddress == "" {
		return nil
	}
	return &model.Proxy{Scheme: scheme, Address: s.ProxyAddress}
}
