package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/simaogato/fundreport-ingest/internal/metrics"
)

// Record kinds used in logs and metric labels
const (
	KindSnapshot  = "snapshot"
	KindValuation = "valuation"
	KindDividend  = "dividend"
)

// IngestService runs the pipeline end to end: registry lookup, derivation,
// dispatch and audit.
type IngestService struct {
	Pipeline   *Pipeline
	Registry   domain.RegistryRepository // nil keeps every record with an empty ticker
	RunRepo    domain.RunRepository      // nil disables the audit trail
	Dispatcher domain.Dispatcher
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	pipeline *Pipeline,
	registry domain.RegistryRepository,
	runRepo domain.RunRepository,
	dispatcher domain.Dispatcher,
	logger *zap.Logger,
	m *metrics.Metrics,
) *IngestService {
	return &IngestService{
		Pipeline:   pipeline,
		Registry:   registry,
		RunRepo:    runRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    m,
		Now:        time.Now,
	}
}

// Preview fetches the registry and derives the batch without dispatching it
func (s *IngestService) Preview(ctx context.Context, ex Extracts) (*Prepared, error) {
	tickers, err := s.tickers(ctx)
	if err != nil {
		return nil, err
	}
	prepared, err := s.Pipeline.Prepare(ex, tickers)
	if err != nil {
		return nil, err
	}
	s.observe(prepared)
	return prepared, nil
}

// Run processes one period end to end.
// Logic:
//  1. Load the ticker registry
//  2. Derive the full batch in memory; nothing is sent if this fails
//  3. Dispatch snapshots, then valuations, then dividends, stopping at the first error
//  4. Record the run in the audit trail and update metrics
//
// The returned run is populated even when err is non-nil.
func (s *IngestService) Run(ctx context.Context, ex Extracts, sources []string) (*domain.IngestionRun, error) {
	run := &domain.IngestionRun{
		ID:          uuid.New(),
		StartedAt:   s.Now().UTC(),
		SourceFiles: sources,
	}

	log := s.Logger.With(zap.String("run_id", run.ID.String()))
	log.Info("ingestion run started", zap.Strings("sources", sources))

	err := s.run(ctx, ex, run, log)
	s.finish(ctx, run, err, log)
	return run, err
}

func (s *IngestService) run(ctx context.Context, ex Extracts, run *domain.IngestionRun, log *zap.Logger) error {
	prepared, err := s.Preview(ctx, ex)
	if err != nil {
		return err
	}

	st := prepared.Stats
	run.RowsRead = st.TotalRowsRead()
	run.DroppedRows = st.Dropped
	run.ResolvedRows = st.Resolved
	run.UnmappedRows = st.Unmapped
	run.Snapshots = len(prepared.Batch.Snapshots)
	run.Valuations = len(prepared.Batch.Valuations)
	run.Dividends = len(prepared.Batch.Dividends)

	log.Info("batch derived",
		zap.Int("rows_read", run.RowsRead),
		zap.Int("merged_rows", st.MergedRows),
		zap.Int("dropped_rows", st.Dropped),
		zap.Int("superseded_rows", st.Superseded),
		zap.Int("resolved", st.Resolved),
		zap.Int("unmapped", st.Unmapped),
		zap.Int("malformed_cells", sum(st.Malformed)),
		zap.Int("snapshots", run.Snapshots),
		zap.Int("valuations", run.Valuations),
		zap.Int("dividends", run.Dividends),
	)

	b := prepared.Batch
	if err := s.dispatch(ctx, KindSnapshot, len(b.Snapshots), func(ctx context.Context) error {
		return s.Dispatcher.PublishSnapshots(ctx, b.Snapshots)
	}); err != nil {
		return err
	}
	if err := s.dispatch(ctx, KindValuation, len(b.Valuations), func(ctx context.Context) error {
		return s.Dispatcher.PublishValuations(ctx, b.Valuations)
	}); err != nil {
		return err
	}
	return s.dispatch(ctx, KindDividend, len(b.Dividends), func(ctx context.Context) error {
		return s.Dispatcher.PublishDividends(ctx, b.Dividends)
	})
}

// dispatch sends one kind of record. Cancellation is honored between kinds.
func (s *IngestService) dispatch(ctx context.Context, kind string, n int, publish func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run aborted before dispatching %ss: %w", kind, err)
	}

	start := s.Now()
	err := publish(ctx)
	s.Metrics.DispatchDuration.WithLabelValues(kind).Observe(s.Now().Sub(start).Seconds())
	if err != nil {
		s.Metrics.DispatchErrors.WithLabelValues(kind).Inc()
		return fmt.Errorf("failed to dispatch %ss: %w", kind, err)
	}
	s.Metrics.RecordsDispatched.WithLabelValues(kind).Add(float64(n))
	return nil
}

// finish stamps the outcome and writes the audit entry. An audit failure is
// logged but does not fail a run whose data was already delivered.
func (s *IngestService) finish(ctx context.Context, run *domain.IngestionRun, runErr error, log *zap.Logger) {
	run.FinishedAt = s.Now().UTC()
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.FailureReason = runErr.Error()
		log.Error("ingestion run failed", zap.Error(runErr))
	} else {
		run.Status = domain.RunStatusSucceeded
		log.Info("ingestion run succeeded", zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	}

	s.Metrics.ObserveRun(run.StartedAt, run.FinishedAt, runErr == nil)

	if s.RunRepo == nil {
		return
	}
	// the audit entry is written even if the run context was cancelled
	auditCtx := context.WithoutCancel(ctx)
	if err := s.RunRepo.Create(auditCtx, run); err != nil {
		log.Error("failed to record ingestion run", zap.Error(err))
	}
}

func (s *IngestService) tickers(ctx context.Context) (map[string]string, error) {
	if s.Registry == nil {
		return nil, nil
	}
	tickers, err := s.Registry.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker registry: %w", err)
	}
	if len(tickers) == 0 {
		// every record will be skipped as unmapped
		s.Logger.Warn("ticker registry is empty")
		return map[string]string{}, nil
	}
	return tickers, nil
}

func (s *IngestService) observe(p *Prepared) {
	m := s.Metrics
	for table, n := range p.Stats.RowsRead {
		m.RowsRead.WithLabelValues(table).Add(float64(n))
	}
	for col, n := range p.Stats.Malformed {
		m.MalformedCells.WithLabelValues(col).Add(float64(n))
	}
	m.RowsDropped.Add(float64(p.Stats.Dropped))
	m.RowsSuperseded.Add(float64(p.Stats.Superseded))
	m.RecordsResolved.Add(float64(p.Stats.Resolved))
	m.RowsUnmapped.Add(float64(p.Stats.Unmapped))
	m.RecordsDerived.WithLabelValues(KindSnapshot).Add(float64(len(p.Batch.Snapshots)))
	m.RecordsDerived.WithLabelValues(KindValuation).Add(float64(len(p.Batch.Valuations)))
	m.RecordsDerived.WithLabelValues(KindDividend).Add(float64(len(p.Batch.Dividends)))
}

func sum(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
