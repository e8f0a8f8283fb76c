// Package metrics exposes run statistics as Prometheus metrics, written to
// a node-exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sink"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Rows          *prometheus.CounterVec
	Events        *prometheus.CounterVec
	Decisions     *prometheus.CounterVec
	Purchases     prometheus.Counter
	Revenue       prometheus.Counter
	OutputRows    *prometheus.CounterVec
	PhaseDuration *prometheus.GaugeVec
	ChecksFailed  prometheus.Gauge
}

// New creates and registers the run collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navgen_rows_total",
			Help: "Rows generated per raw table",
		}, []string{"table"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navgen_events_total",
			Help: "Events generated per event type and experiment variant",
		}, []string{"event_type", "variant"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navgen_eligibility_decisions_total",
			Help: "Eligibility decisions by outcome",
		}, []string{"approved"}),
		Purchases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navgen_purchases_total",
			Help: "Purchases generated",
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navgen_purchase_revenue_total",
			Help: "Sum of purchase prices",
		}),
		OutputRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navgen_output_rows_total",
			Help: "Rows written per output format and table",
		}, []string{"format", "table"}),
		PhaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "navgen_phase_duration_seconds",
			Help: "Wall time of each run phase",
		}, []string{"phase"}),
		ChecksFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navgen_dq_checks_failed",
			Help: "Data-quality checks failing after the last warehouse build",
		}),
	}

	m.registry.MustRegister(
		m.Rows,
		m.Events,
		m.Decisions,
		m.Purchases,
		m.Revenue,
		m.OutputRows,
		m.PhaseDuration,
		m.ChecksFailed,
	)
	return m
}

// Registry returns the registry holding the run collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the contents of a generated dataset.
func (m *Metrics) Observe(ds *models.Dataset) {
	for table, n := range ds.Counts() {
		m.Rows.WithLabelValues(table).Add(float64(n))
	}
	for _, e := range ds.Events {
		m.Events.WithLabelValues(string(e.Type()), string(e.Variant)).Inc()
	}
	for _, d := range ds.Eligibility {
		m.Decisions.WithLabelValues(fmt.Sprint(d.Approved)).Inc()
	}
	for _, p := range ds.Purchases {
		m.Purchases.Inc()
		m.Revenue.Add(p.PurchasePrice)
	}
}

// ObserveOutputs records rows written by the sinks.
func (m *Metrics) ObserveOutputs(outputs []sink.Output) {
	for _, o := range outputs {
		m.OutputRows.WithLabelValues(o.Format, o.Table).Add(float64(o.Rows))
	}
}

// ObservePhase records how long a phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
