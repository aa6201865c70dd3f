package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr = "127.0.0.1:7379"
	DefaultHTTPAddr   = "127.0.0.1:7380"
)

type Config struct {
	ListenAddr string  `yaml:"listen_addr"`
	HTTPAddr   string  `yaml:"http_addr"`
	Logging    Logging `yaml:"logging"`
}

type Logging struct {
	Level string `yaml:"level"`
	// File enables rotated file output; empty means stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads configuration from a YAML file if path is given, otherwise starts
// from defaults. COREKV_* environment variables override either source.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: DefaultListenAddr,
		HTTPAddr:   DefaultHTTPAddr,
		Logging: Logging{
			Level: "info",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen_addr must not be empty")
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http_addr must not be empty")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COREKV_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("COREKV_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("COREKV_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COREKV_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}
