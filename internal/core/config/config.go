package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Dataset DatasetConfig `koanf:"dataset"`
	Explore ExploreConfig `koanf:"explore"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatasetConfig struct {
	Path string `koanf:"path"` // CSV file; ".gz" suffix enables decompression
}

type ExploreConfig struct {
	CacheSize         int `koanf:"cache_size"`
	MaxTopN           int `koanf:"max_top_n"`
	MaxSampleRows     int `koanf:"max_sample_rows"`
	DefaultTopN       int `koanf:"default_top_n"`
	DefaultSampleRows int `koanf:"default_sample_rows"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if _, err := os.Stat(c.Dataset.Path); err != nil {
		return fmt.Errorf("dataset.path %q is not accessible: %w", c.Dataset.Path, err)
	}

	if c.Explore.CacheSize <= 0 {
		return fmt.Errorf("explore.cache_size must be > 0")
	}
	if c.Explore.MaxTopN <= 0 {
		return fmt.Errorf("explore.max_top_n must be > 0")
	}
	if c.Explore.MaxSampleRows <= 0 {
		return fmt.Errorf("explore.max_sample_rows must be > 0")
	}
	if c.Explore.DefaultTopN <= 0 || c.Explore.DefaultTopN > c.Explore.MaxTopN {
		return fmt.Errorf("explore.default_top_n must be in 1-%d", c.Explore.MaxTopN)
	}
	if c.Explore.DefaultSampleRows <= 0 || c.Explore.DefaultSampleRows > c.Explore.MaxSampleRows {
		return fmt.Errorf("explore.default_sample_rows must be in 1-%d", c.Explore.MaxSampleRows)
	}

	return nil
}

// Load parses config from file + env, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                 8080,
		"server.host":                 "0.0.0.0",
		"server.mode":                 "release",
		"dataset.path":                "./data/rr_grade_crossing_accident_data_app_ready.csv.gz",
		"explore.cache_size":          128,
		"explore.max_top_n":           50,
		"explore.max_sample_rows":     500,
		"explore.default_top_n":       10,
		"explore.default_sample_rows": 20,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CROSSVIEW_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CROSSVIEW_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
