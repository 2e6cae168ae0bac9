package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// Dispatch outcomes used as metric labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNonZero = "nonzero"
)

// unresolvedVerb labels dispatches whose verb could not be resolved.
const unresolvedVerb = "unresolved"

// Metrics provides Prometheus metrics for lets. It implements
// engine.Recorder.
type Metrics struct {
	config MetricsConfig

	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	settingsSaves    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	m := &Metrics{
		config:   cfg,
		registry: prometheus.NewRegistry(),

		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_total",
				Help:      "Total number of verb dispatches",
			},
			[]string{"verb", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of verb dispatches in seconds",
				Buckets:   buckets,
			},
			[]string{"verb"},
		),
		settingsSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "settings_saves_total",
				Help:      "Total number of settings document writes",
			},
			[]string{"outcome"},
		),
	}

	collectors := []prometheus.Collector{m.dispatches, m.dispatchDuration, m.settingsSaves}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// RecordDispatch records a finished dispatch. An empty verb means the verb
// did not resolve.
func (m *Metrics) RecordDispatch(verb string, code int, duration time.Duration) {
	if verb == "" {
		verb = unresolvedVerb
	}
	m.dispatches.WithLabelValues(verb, outcome(code)).Inc()
	m.dispatchDuration.WithLabelValues(verb).Observe(duration.Seconds())
}

// RecordSettingsSaved records a write of the settings document.
func (m *Metrics) RecordSettingsSaved(err error) {
	result := OutcomeSuccess
	if err != nil {
		result = OutcomeFailure
	}
	m.settingsSaves.WithLabelValues(result).Inc()
}

// Registry returns the registry holding the lets metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
// It does nothing when no textfile is configured.
func (m *Metrics) WriteTextfile() error {
	if m.config.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.config.Textfile, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func outcome(code int) string {
	switch code {
	case engine.ExitOK:
		return OutcomeSuccess
	case engine.ExitFailure:
		return OutcomeFailure
	default:
		return OutcomeNonZero
	}
}

// Verify Metrics implements engine.Recorder.
var _ engine.Recorder = (*Metrics)(nil)
