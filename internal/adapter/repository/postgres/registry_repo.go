package postgres

import (
	"context"
	"fmt"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// registryRepository implements domain.RegistryRepository
type registryRepository struct {
	db *DB
}

// NewRegistryRepository creates a registry repository reading fii_registry
func NewRegistryRepository(db *DB) domain.RegistryRepository {
	return &registryRepository{db: db}
}

// Tickers returns the ticker of every registered fund keyed by CNPJ.
// Rows with an empty CNPJ or ticker are skipped.
func (r *registryRepository) Tickers(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT cnpj, ticker
		FROM fii_registry
		WHERE cnpj IS NOT NULL AND ticker IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund registry: %w", err)
	}
	defer rows.Close()

	tickers := make(map[string]string)
	for rows.Next() {
		var cnpj, ticker string
		if err := rows.Scan(&cnpj, &ticker); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		if cnpj == "" || ticker == "" {
			continue
		}
		tickers[cnpj] = ticker
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registry rows: %w", err)
	}

	return tickers, nil
}
