package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	m := New()

	m.KafkaMessagesConsumed.Inc()
	m.KafkaMessagesConsumed.Inc()
	if got := testutil.ToFloat64(m.KafkaMessagesConsumed); got != 2 {
		t.Errorf("expected 2 consumed, got %v", got)
	}

	m.KafkaMessagesProduced.Inc()
	if got := testutil.ToFloat64(m.KafkaMessagesProduced); got != 1 {
		t.Errorf("expected 1 produced, got %v", got)
	}

	m.DocumentsValidated.WithLabelValues("compliant").Inc()
	if got := testutil.ToFloat64(m.DocumentsValidated.WithLabelValues("compliant")); got != 1 {
		t.Errorf("expected 1 compliant validation, got %v", got)
	}

	m.CircuitBreakerState.WithLabelValues("report-stats").Set(1)
	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("report-stats")); got != 1 {
		t.Errorf("expected open breaker gauge, got %v", got)
	}
}
