package config

import "time"

// Config is the root configuration of the ingestion job.
// It is built once at startup; only adapters receive it.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Registry RegistryConfig `yaml:"registry"`
	Database DBConfig       `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig describes the CSV extracts.
type InputConfig struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"` // "latin1" or "utf8"
}

// PipelineConfig tunes the derivation rules.
type PipelineConfig struct {
	ZeroPolicy string `yaml:"zero_policy"` // "absent" or "value"
}

// DispatchConfig holds the downstream ingestion API settings.
type DispatchConfig struct {
	BaseURL       string        `yaml:"base_url"`
	AnonKey       string        `yaml:"anon_key"`
	IngestAPIKey  string        `yaml:"ingest_api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    *int          `yaml:"max_retries"` // nil means DefaultMaxRetries; 0 disables retries
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
	BatchSize     int           `yaml:"batch_size"`
	SnapshotPath  string        `yaml:"snapshot_path"`
	ValuationPath string        `yaml:"valuation_path"`
	DividendPath  string        `yaml:"dividend_path"`
	RegistryPath  string        `yaml:"registry_path"`
}

// Retries returns the configured retry count, or the default when unset.
func (d DispatchConfig) Retries() int {
	if d.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *d.MaxRetries
}

// RegistryConfig selects where fund tickers come from.
type RegistryConfig struct {
	Source string `yaml:"source"` // "http", "postgres" or "none"
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// AuditConfig enables the ingestion_runs audit table.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig holds Prometheus Pushgateway settings. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Registry sources.
const (
	RegistryHTTP     = "http"
	RegistryPostgres = "postgres"
	RegistryNone     = "none"
)

// NeedsDatabase reports whether any enabled component talks to Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Registry.Source == RegistryPostgres || c.Audit.Enabled
}
