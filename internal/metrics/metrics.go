package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perimeterwatch/internal/alarm"
)

// Metrics holds the classification counters exported on /metrics.
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	framesTotal  prometheus.Counter
	alarmsTotal  *prometheus.CounterVec
	runDuration  prometheus.Histogram
	storedAlarms prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perimeter_runs_total",
			Help: "Classification runs by outcome",
		}, []string{"outcome"}),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perimeter_frames_processed_total",
			Help: "Frames classified across all runs",
		}),
		alarmsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perimeter_alarms_total",
			Help: "Alarm events emitted by threat level",
		}, []string{"level"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "perimeter_run_duration_seconds",
			Help:    "Wall-clock duration of classification runs",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		storedAlarms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "perimeter_stored_alarms",
			Help: "Alarm rows currently held in the store",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.runsTotal, m.framesTotal, m.alarmsTotal, m.runDuration, m.storedAlarms)
	return m
}

// ObserveRun records a finished run. err marks the run as failed.
func (m *Metrics) ObserveRun(frames int, events []alarm.Event, took time.Duration, err error) {
	m.runDuration.Observe(took.Seconds())
	if err != nil {
		m.runsTotal.WithLabelValues("error").Inc()
		return
	}
	m.runsTotal.WithLabelValues("ok").Inc()
	m.framesTotal.Add(float64(frames))
	for _, e := range events {
		m.alarmsTotal.WithLabelValues(string(e.ThreatLevel)).Inc()
	}
}

// SetStoredAlarms reports the current size of the alarm store.
func (m *Metrics) SetStoredAlarms(n int) {
	m.storedAlarms.Set(float64(n))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
