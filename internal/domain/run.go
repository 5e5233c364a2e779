package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the outcome of an ingestion run
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// IngestionRun is the audit entry written for every pipeline execution.
// DroppedRows counts rows that could not be reconciled (missing fund or period).
type IngestionRun struct {
	ID            uuid.UUID
	StartedAt     time.Time
	FinishedAt    time.Time
	SourceFiles   []string
	RowsRead      int
	DroppedRows   int
	ResolvedRows  int
	UnmappedRows  int
	Snapshots     int
	Valuations    int
	Dividends     int
	Status        RunStatus
	FailureReason string // empty unless Status is FAILED
}

// Validate ensures the run adheres to domain rules
func (r *IngestionRun) Validate() error {
	if r.ID == uuid.Nil {
		return errors.New("ingestion run ID cannot be empty")
	}
	if r.Status != RunStatusSucceeded && r.Status != RunStatusFailed {
		return errors.New("ingestion run status must be SUCCEEDED or FAILED")
	}
	if r.Status == RunStatusFailed && r.FailureReason == "" {
		return errors.New("failed ingestion run must have a failure reason")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return errors.New("ingestion run cannot finish before it starts")
	}
	return nil
}
