// Package metrics records ingestion counters for the Prometheus node
// exporter textfile collector.
package metrics

import (
	"time"

	"dbf-pump/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is an engine.Progress sink backed by its own registry, so a run
// writes only its own series.
type Recorder struct {
	registry *prometheus.Registry

	// RecordsTotal tracks processed source records per tenant
	RecordsTotal *prometheus.CounterVec
	// TenantsTotal tracks tenant passes by status
	TenantsTotal *prometheus.CounterVec
	// TenantDuration tracks the duration of one tenant pass
	TenantDuration *prometheus.HistogramVec
	// LastRunDuration is the wall time of the last completed run
	LastRunDuration prometheus.Gauge
	// LastSuccess is the unix time of the last committed run
	LastSuccess prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbfpump_records_total",
				Help: "Total number of source records processed",
			},
			[]string{"tenant", "outcome"}, // "inserted", "skipped"
		),
		TenantsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbfpump_tenants_total",
				Help: "Total number of tenant passes",
			},
			[]string{"status"}, // "ingested", "missing"
		),
		TenantDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbfpump_tenant_duration_seconds",
				Help:    "Duration of one tenant pass in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tenant"},
		),
		LastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dbfpump_last_run_duration_seconds",
			Help: "Duration of the last completed run in seconds",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dbfpump_last_success_timestamp_seconds",
			Help: "Unix time of the last committed run",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) TenantStarted(string, int) {}

func (r *Recorder) RecordProcessed(tenant string, inserted bool) {
	outcome := "skipped"
	if inserted {
		outcome = "inserted"
	}
	r.RecordsTotal.WithLabelValues(tenant, outcome).Inc()
}

func (r *Recorder) TenantDone(res engine.TenantResult) {
	r.TenantsTotal.WithLabelValues("ingested").Inc()
	r.TenantDuration.WithLabelValues(res.Tenant).Observe(res.Duration.Seconds())
}

func (r *Recorder) TenantMissing(string, string) {
	r.TenantsTotal.WithLabelValues("missing").Inc()
}

// ObserveRun records the outcome of a finished run.
func (r *Recorder) ObserveRun(res *engine.RunResult, now time.Time) {
	r.LastRunDuration.Set(res.Duration.Seconds())
	if res.Committed {
		r.LastSuccess.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes all series to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
