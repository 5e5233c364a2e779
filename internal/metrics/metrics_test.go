package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.RowsRead.WithLabelValues("geral").Add(4)
	m.RowsDropped.Add(2)
	m.RowsSuperseded.Add(5)
	m.RecordsDerived.WithLabelValues("snapshot").Add(3)

	families := gather(t, m)

	require.Contains(t, families, "fundreport_rows_read_total")
	assert.Equal(t, 4.0, families["fundreport_rows_read_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, families["fundreport_rows_dropped_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 5.0, families["fundreport_rows_superseded_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 3.0, families["fundreport_records_derived_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := New()
	started := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)

	m.ObserveRun(started, finished, true)

	families := gather(t, m)
	assert.Equal(t, 90.0, families["fundreport_run_duration_seconds"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, float64(finished.Unix()), families["fundreport_last_success_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_ObserveRunFailureKeepsLastSuccess(t *testing.T) {
	m := New()
	started := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	m.ObserveRun(started, started.Add(time.Second), false)

	families := gather(t, m)
	assert.Equal(t, 0.0, families["fundreport_last_success_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
}

func TestPush_EmptyURLIsNoop(t *testing.T) {
	assert.NoError(t, New().Push(context.Background(), "", "job"))
}

func TestPush_SendsToGateway(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.RowsDropped.Inc()

	require.NoError(t, m.Push(context.Background(), srv.URL, "fundreport_ingest"))
	assert.Equal(t, "/metrics/job/fundreport_ingest", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "fundreport_ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
