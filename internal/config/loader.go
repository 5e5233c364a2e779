package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromEnv builds the config from the environment variables the job has always
// been deployed with. Values are taken verbatim, never parsed as YAML.
func FromEnv() (*Config, error) {
	var cfg Config
	cfg.Dispatch.BaseURL = os.Getenv("SUPABASE_URL")
	cfg.Dispatch.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	cfg.Dispatch.IngestAPIKey = os.Getenv("INGEST_API_KEY")
	cfg.Registry.Source = os.Getenv("REGISTRY_SOURCE")
	cfg.Database.Host = os.Getenv("DB_HOST")
	cfg.Database.Name = os.Getenv("DB_NAME")
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Metrics.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")

	if v := os.Getenv("AUDIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse AUDIT_ENABLED: %w", err)
		}
		cfg.Audit.Enabled = enabled
	}

	return &cfg, nil
}

// Parse expands ${VAR} environment variables in data and decodes it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// Load reads a YAML config file and expands environment variables.
// An empty path reads the settings from the environment alone.
func Load(path string) (*Config, error) {
	if path == "" {
		return FromEnv()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
