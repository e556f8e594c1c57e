package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert generation engine.
type Metrics struct {
	RunsTotal     prometheus.Counter
	RunFailures   prometheus.Counter
	RunDuration   prometheus.Histogram
	EngineRunning prometheus.Gauge

	// Per-run outcome metrics.
	AlertsGenerated *prometheus.CounterVec // labels: type={onda_calor,chuvas_fortes,ventos_fortes}
	CitiesSkipped   prometheus.Counter

	// Collaborator failure metrics.
	ProviderErrors *prometheus.CounterVec // labels: phase={current,forecast}
	StoreErrors    prometheus.Counter

	// Notification fan-out metrics.
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	AlertsPublished     prometheus.Counter
	PublishErrors       prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "runs_total",
			Help:      "Total evaluation cycles started.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "run_failures_total",
			Help:      "Total evaluation cycles that aborted with a fatal error.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_alerts",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-evaluate-persist-notify cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_alerts",
			Name:      "engine_running",
			Help:      "1 while an evaluation cycle is in flight, 0 otherwise.",
		}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "alerts_generated_total",
			Help:      "Newly persisted alert events by alert type.",
		}, []string{"type"}),
		CitiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "cities_skipped_total",
			Help:      "Cities skipped for missing coordinates.",
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "provider_errors_total",
			Help:      "Weather provider failures by fetch phase.",
		}, []string{"phase"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "store_errors_total",
			Help:      "Store failures during validation, persistence, or lookup.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "notifications_sent_total",
			Help:      "Digest emails delivered.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "notifications_failed_total",
			Help:      "Digest emails that failed to send.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "alerts_published_total",
			Help:      "Alert events published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_alerts",
			Name:      "publish_errors_total",
			Help:      "Alert event publish failures.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.RunDuration,
		m.EngineRunning,
		m.AlertsGenerated,
		m.CitiesSkipped,
		m.ProviderErrors,
		m.StoreErrors,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.AlertsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "runs_total"}),
		RunFailures:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "run_failures_total"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_alerts", Name: "run_duration_seconds"}),
		EngineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_alerts", Name: "engine_running"}),
		AlertsGenerated:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "alerts_generated_total"}, []string{"type"}),
		CitiesSkipped:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "cities_skipped_total"}),
		ProviderErrors:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "provider_errors_total"}, []string{"phase"}),
		StoreErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "store_errors_total"}),
		NotificationsSent:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "notifications_sent_total"}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "notifications_failed_total"}),
		AlertsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "alerts_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_alerts", Name: "publish_errors_total"}),
	}
}
