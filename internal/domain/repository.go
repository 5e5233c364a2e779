package domain

import (
	"context"
)

// RegistryRepository resolves fund identifiers to exchange tickers
type RegistryRepository interface {
	// Tickers returns the ticker of every registered fund, keyed by entity ID
	Tickers(ctx context.Context) (map[string]string, error)
}

// RunRepository defines the interface for ingestion audit persistence
type RunRepository interface {
	// Create stores a finished ingestion run
	Create(ctx context.Context, run *IngestionRun) error
}

// Dispatcher delivers derived records to the downstream ingestion endpoint.
// Implementations own serialization, batching, authentication and retries.
type Dispatcher interface {
	// PublishSnapshots sends the current fund snapshots
	PublishSnapshots(ctx context.Context, snapshots []Snapshot) error

	// PublishValuations sends the book value history
	PublishValuations(ctx context.Context, valuations []Valuation) error

	// PublishDividends sends the distribution history
	PublishDividends(ctx context.Context, dividends []Dividend) error
}
