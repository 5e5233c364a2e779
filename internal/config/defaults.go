package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultDelimiter      = ";"
	DefaultEncoding       = "latin1"
	DefaultZeroPolicy     = "absent"
	DefaultAPITimeout     = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBackoff   = 1 * time.Second
	DefaultBatchSize      = 500
	DefaultSnapshotPath   = "/functions/v1/ingest-fundamental-data"
	DefaultValuationPath  = "/rest/v1/fii_metrics"
	DefaultDividendPath   = "/rest/v1/fii_dividends"
	DefaultRegistryPath   = "/rest/v1/fii_registry"
	DefaultRegistrySource = RegistryHTTP
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMetricsJob     = "fundreport_ingest"
	DefaultLogLevel       = "info"
)

func (c *Config) applyDefaults() {
	// Input defaults
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = DefaultDelimiter
	}
	if c.Input.Encoding == "" {
		c.Input.Encoding = DefaultEncoding
	}

	if c.Pipeline.ZeroPolicy == "" {
		c.Pipeline.ZeroPolicy = DefaultZeroPolicy
	}

	// Dispatch defaults
	c.Dispatch.BaseURL = strings.TrimRight(c.Dispatch.BaseURL, "/")
	if c.Dispatch.Timeout == 0 {
		c.Dispatch.Timeout = DefaultAPITimeout
	}
	if c.Dispatch.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.Dispatch.MaxRetries = &retries
	}
	if c.Dispatch.RetryBackoff == 0 {
		c.Dispatch.RetryBackoff = DefaultRetryBackoff
	}
	if c.Dispatch.BatchSize == 0 {
		c.Dispatch.BatchSize = DefaultBatchSize
	}
	if c.Dispatch.SnapshotPath == "" {
		c.Dispatch.SnapshotPath = DefaultSnapshotPath
	}
	if c.Dispatch.ValuationPath == "" {
		c.Dispatch.ValuationPath = DefaultValuationPath
	}
	if c.Dispatch.DividendPath == "" {
		c.Dispatch.DividendPath = DefaultDividendPath
	}
	if c.Dispatch.RegistryPath == "" {
		c.Dispatch.RegistryPath = DefaultRegistryPath
	}

	if c.Registry.Source == "" {
		c.Registry.Source = DefaultRegistrySource
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}

	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
