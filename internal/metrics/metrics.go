// Package metrics records run results as prometheus metrics and writes them in
// the text exposition format, for pickup by a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"scriptest/internal/domain"
)

const MetricsNamespace = "scriptest"

// Recorder owns a private registry so repeated runs in one process don't collide
type Recorder struct {
	registry *prometheus.Registry

	unitsTotal   *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	runDuration  prometheus.Gauge
	runSuccess   prometheus.Gauge
	runTimestamp prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		unitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "units_total",
			Help:      "Number of executed test units by result",
		}, []string{"result"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "unit_duration_seconds",
			Help:      "Execution time of test units",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"directory"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the last run",
		}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_success",
			Help:      "1 if every unit of the last run passed, 0 otherwise",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the last run started",
		}),
	}
	r.registry.MustRegister(r.unitsTotal, r.unitDuration, r.runDuration, r.runSuccess, r.runTimestamp)
	// Both results are always exported, even at zero
	r.unitsTotal.WithLabelValues(string(domain.StatusPassed))
	r.unitsTotal.WithLabelValues(string(domain.StatusFailed))
	return r
}

// Record adds a finished run
func (r *Recorder) Record(result domain.RunResult) {
	for _, u := range result.Units {
		r.unitsTotal.WithLabelValues(string(u.Outcome.Status)).Inc()
		r.unitDuration.WithLabelValues(u.Ref.Dir).Observe(u.Outcome.Duration.Seconds())
	}
	r.runDuration.Set(result.Duration.Seconds())
	if result.OK() {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
	r.runTimestamp.Set(float64(result.StartedAt.Unix()))
}

// Gatherer exposes the registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
