package config

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// ValidateLocal checks the settings needed to read and derive without talking to
// any downstream system.
func (c *Config) ValidateLocal() error {
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if c.Input.Encoding != "latin1" && c.Input.Encoding != "utf8" {
		return fmt.Errorf("input.encoding must be latin1 or utf8, got %q", c.Input.Encoding)
	}
	if !domain.ZeroPolicy(c.Pipeline.ZeroPolicy).Valid() {
		return fmt.Errorf("pipeline.zero_policy must be absent or value, got %q", c.Pipeline.ZeroPolicy)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.ValidateLocal(); err != nil {
		return err
	}

	if c.Dispatch.BaseURL == "" {
		return errors.New("dispatch.base_url is required")
	}
	if u, err := url.Parse(c.Dispatch.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dispatch.base_url must be an absolute URL, got %q", c.Dispatch.BaseURL)
	}
	if c.Dispatch.AnonKey == "" {
		return errors.New("dispatch.anon_key is required")
	}
	if c.Dispatch.IngestAPIKey == "" {
		return errors.New("dispatch.ingest_api_key is required")
	}
	if c.Dispatch.Retries() < 0 {
		return errors.New("dispatch.max_retries must be >= 0")
	}
	if c.Dispatch.BatchSize < 1 {
		return errors.New("dispatch.batch_size must be >= 1")
	}

	switch c.Registry.Source {
	case RegistryHTTP, RegistryPostgres, RegistryNone:
	default:
		return fmt.Errorf("registry.source must be http, postgres or none, got %q", c.Registry.Source)
	}

	if c.NeedsDatabase() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	return nil
}

// ConnString builds a lib/pq key/value connection string.
func (db DBConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(db.Host), db.Port, quote(db.User), quote(db.Password), quote(db.Name), quote(db.SSLMode))
}

// quote escapes a value for the key/value connection string format
func quote(v string) string {
	escaped := make([]rune, 0, len(v)+2)
	escaped = append(escaped, '\'')
	for _, r := range v {
		if r == '\'' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	escaped = append(escaped, '\'')
	return string(escaped)
}
