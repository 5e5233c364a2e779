package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the counters of one ingestion run. Each instance owns its
// registry so runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	RowsRead          *prometheus.CounterVec
	MalformedCells    *prometheus.CounterVec
	RowsDropped       prometheus.Counter
	RowsSuperseded    prometheus.Counter
	RecordsResolved   prometheus.Counter
	RowsUnmapped      prometheus.Counter
	RecordsDerived    *prometheus.CounterVec
	RecordsDispatched *prometheus.CounterVec
	DispatchErrors    *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
	RunDuration       prometheus.Gauge
	LastSuccess       prometheus.Gauge
}

// New registers every ingestion metric on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsRead: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fundreport_rows_read_total",
			Help: "Rows read from each extract",
		}, []string{"table"}),
		MalformedCells: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fundreport_malformed_cells_total",
			Help: "Non-empty cells that failed date or number coercion",
		}, []string{"column"}),
		RowsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "fundreport_rows_dropped_total",
			Help: "Rows discarded because the fund ID or reference period is missing",
		}),
		RowsSuperseded: f.NewCounter(prometheus.CounterOpts{
			Name: "fundreport_rows_superseded_total",
			Help: "Rows discarded because a newer version of the same report exists",
		}),
		RecordsResolved: f.NewCounter(prometheus.CounterOpts{
			Name: "fundreport_records_resolved_total",
			Help: "Authoritative records kept after version resolution",
		}),
		RowsUnmapped: f.NewCounter(prometheus.CounterOpts{
			Name: "fundreport_records_unmapped_total",
			Help: "Records skipped because the fund has no ticker",
		}),
		RecordsDerived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fundreport_records_derived_total",
			Help: "Derived output records by kind",
		}, []string{"kind"}),
		RecordsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fundreport_records_dispatched_total",
			Help: "Records accepted by the ingestion API by kind",
		}, []string{"kind"}),
		DispatchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fundreport_dispatch_errors_total",
			Help: "Failed dispatch requests by kind",
		}, []string{"kind"}),
		DispatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fundreport_dispatch_duration_seconds",
			Help:    "Time taken to dispatch one kind of record",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "fundreport_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "fundreport_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records the outcome of a finished run
func (m *Metrics) ObserveRun(started, finished time.Time, succeeded bool) {
	m.RunDuration.Set(finished.Sub(started).Seconds())
	if succeeded {
		m.LastSuccess.Set(float64(finished.Unix()))
	}
}

// Push sends every metric to a Prometheus Pushgateway. An empty URL is a no-op:
// a batch job has no scrape endpoint, so pushing is the only way out.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
