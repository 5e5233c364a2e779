package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// runRepository implements domain.RunRepository
type runRepository struct {
	db *DB
}

// NewRunRepository creates a new ingestion run repository
func NewRunRepository(db *DB) domain.RunRepository {
	return &runRepository{db: db}
}

// Create stores a finished ingestion run
func (r *runRepository) Create(ctx context.Context, run *domain.IngestionRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid ingestion run: %w", err)
	}

	query := `
		INSERT INTO ingestion_runs (
			id, started_at, finished_at, source_files,
			rows_read, dropped_rows, resolved_rows, unmapped_rows,
			snapshots, valuations, dividends,
			status, failure_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	sourceFiles := run.SourceFiles
	if sourceFiles == nil {
		sourceFiles = []string{}
	}

	var failureReason sql.NullString
	if run.FailureReason != "" {
		failureReason = sql.NullString{String: run.FailureReason, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		pq.Array(sourceFiles),
		run.RowsRead,
		run.DroppedRows,
		run.ResolvedRows,
		run.UnmappedRows,
		run.Snapshots,
		run.Valuations,
		run.Dividends,
		string(run.Status),
		failureReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingestion run: %w", err)
	}

	return nil
}
