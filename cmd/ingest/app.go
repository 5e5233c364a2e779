package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/simaogato/fundreport-ingest/internal/adapter/csvfile"
	"github.com/simaogato/fundreport-ingest/internal/adapter/repository/postgres"
	"github.com/simaogato/fundreport-ingest/internal/adapter/supabase"
	"github.com/simaogato/fundreport-ingest/internal/config"
	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/simaogato/fundreport-ingest/internal/logging"
	"github.com/simaogato/fundreport-ingest/internal/metrics"
	"github.com/simaogato/fundreport-ingest/internal/usecase/ingest"
)

// app holds the process-wide dependencies built from the config file
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	client  *supabase.Client
	db      *postgres.DB
}

// newApp loads the config and wires adapters. With local set only the
// settings needed to read and derive are validated.
func newApp(ctx context.Context, configPath string, local bool) (*app, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}
	if local {
		err = cfg.ValidateLocal()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	if cfg.Dispatch.BaseURL != "" {
		a.client = supabase.NewClient(cfg.Dispatch.BaseURL, cfg.Dispatch.AnonKey, cfg.Dispatch.IngestAPIKey,
			supabase.WithTimeout(cfg.Dispatch.Timeout),
			supabase.WithRetries(cfg.Dispatch.Retries(), cfg.Dispatch.RetryBackoff),
			supabase.WithBatchSize(cfg.Dispatch.BatchSize),
			supabase.WithLogger(logger.Named("supabase")),
			supabase.WithPaths(supabase.Paths{
				Snapshot:  cfg.Dispatch.SnapshotPath,
				Valuation: cfg.Dispatch.ValuationPath,
				Dividend:  cfg.Dispatch.DividendPath,
				Registry:  cfg.Dispatch.RegistryPath,
			}),
		)
	}

	if cfg.NeedsDatabase() {
		db, err := postgres.NewDB(ctx, cfg.Database.ConnString())
		if err != nil {
			_ = logger.Sync()
			return nil, err
		}
		a.db = db
	}

	return a, nil
}

// registry returns the configured ticker source, or nil when tickers are disabled
func (a *app) registry() (domain.RegistryRepository, error) {
	switch a.cfg.Registry.Source {
	case config.RegistryNone:
		return nil, nil
	case config.RegistryPostgres:
		if a.db == nil {
			return nil, fmt.Errorf("registry.source %q needs a database", config.RegistryPostgres)
		}
		return postgres.NewRegistryRepository(a.db), nil
	default:
		if a.client == nil {
			return nil, fmt.Errorf("registry.source %q needs dispatch.base_url", config.RegistryHTTP)
		}
		return a.client, nil
	}
}

// service builds the ingest service. The audit trail is wired only when enabled.
func (a *app) service() (*ingest.IngestService, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, err
	}

	var runRepo domain.RunRepository
	if a.cfg.Audit.Enabled && a.db != nil {
		runRepo = postgres.NewRunRepository(a.db)
	}

	var dispatcher domain.Dispatcher
	if a.client != nil {
		dispatcher = a.client
	}

	pipeline := ingest.NewPipeline(domain.ZeroPolicy(a.cfg.Pipeline.ZeroPolicy))
	return ingest.NewIngestService(pipeline, registry, runRepo, dispatcher, a.logger, a.metrics), nil
}

// extractRoles name the tables after their role so merge suffixes and metric
// labels do not depend on file names
var extractRoles = []string{"geral", "ativo", "complemento"}

// readExtracts loads the three monthly files in join order
func (a *app) readExtracts(paths []string) (ingest.Extracts, []string, error) {
	opts, err := csvfile.NewOptions(a.cfg.Input.Delimiter, a.cfg.Input.Encoding)
	if err != nil {
		return ingest.Extracts{}, nil, err
	}

	tables := make([]domain.RawTable, len(paths))
	sources := make([]string, len(paths))
	for i, p := range paths {
		t, err := csvfile.Read(p, opts)
		if err != nil {
			return ingest.Extracts{}, nil, err
		}
		a.logger.Debug("read extract", zap.String("path", p), zap.Int("rows", len(t.Rows)))
		t.Name = extractRoles[i]
		tables[i] = t
		sources[i] = filepath.Base(p)
	}

	return ingest.Extracts{General: tables[0], Asset: tables[1], Complement: tables[2]}, sources, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
