// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"playcaller/logger"
	"playcaller/ml"
)

type Config struct {
	Model struct {
		Dir       string        `yaml:"dir"`
		Format    string        `yaml:"format"`
		Watch     bool          `yaml:"watch"`
		Debounce  time.Duration `yaml:"debounce"`
		CacheSize int           `yaml:"cache_size"`
	} `yaml:"model"`
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		Encoding   string `yaml:"encoding"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the configuration used for any field the file leaves out.
func Default() *Config {
	c := &Config{}
	c.Model.Dir = "models/playcalling"
	c.Model.Format = ml.FormatText
	c.Model.Debounce = 250 * time.Millisecond
	c.Model.CacheSize = 4096
	c.Http.Port = 8080
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Http.MaxBodyBytes = 1 << 20
	c.Database.Path = "data/predictions.db"
	c.Log.Level = "info"
	c.Log.Encoding = "json"
	return c
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Model.Dir == "" {
		return errors.New("model.dir is required")
	}
	switch c.Model.Format {
	case ml.FormatText, ml.FormatBinary:
	default:
		return fmt.Errorf("model.format must be %q or %q, got %q", ml.FormatText, ml.FormatBinary, c.Model.Format)
	}
	if c.Model.CacheSize < 0 {
		return errors.New("model.cache_size must not be negative")
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding)
	}
	return nil
}

// LoggerConfig converts the log section for the logger package.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Encoding:   c.Log.Encoding,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
