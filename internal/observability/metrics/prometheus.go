// Package metrics provides Prometheus metrics for the compliance engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsValidated    *prometheus.CounterVec
	ComplianceScore       prometheus.Histogram
	TemplatesGenerated    prometheus.Counter
	FormsValidated        *prometheus.CounterVec
	ReportsGenerated      prometheus.Counter
	ValidationDuration    prometheus.Histogram
	KafkaMessagesProduced prometheus.Counter
	KafkaMessagesConsumed prometheus.Counter
	OutboxPending         prometheus.Gauge
	CircuitBreakerState   *prometheus.GaugeVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		DocumentsValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "documents_validated_total",
			Help: "Total documentation records validated",
		}, []string{"outcome"}),
		ComplianceScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_score",
			Help:    "Distribution of computed compliance scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		TemplatesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "form_templates_generated_total",
			Help: "Total form templates generated",
		}),
		FormsValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_validated_total",
			Help: "Total form submissions validated",
		}, []string{"outcome"}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_reports_generated_total",
			Help: "Total compliance reports generated",
		}),
		ValidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "validation_duration_seconds",
			Help:    "Document validation duration",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		KafkaMessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total Kafka messages produced",
		}),
		KafkaMessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total Kafka messages consumed",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.DocumentsValidated,
		m.ComplianceScore,
		m.TemplatesGenerated,
		m.FormsValidated,
		m.ReportsGenerated,
		m.ValidationDuration,
		m.KafkaMessagesProduced,
		m.KafkaMessagesConsumed,
		m.OutboxPending,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
