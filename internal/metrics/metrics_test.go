package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCountersAreIndependentPerInstance(t *testing.T) {
	a, b := New(), New()
	a.ExpensesCreated.Inc()
	a.ExpensesCreated.Inc()
	b.ExpensesCreated.Inc()

	if got := counterValue(t, a.ExpensesCreated); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := counterValue(t, b.ExpensesCreated); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New()
	m.SyncPublished.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `economad_sync_messages_published_total{result="ok"} 1`) {
		t.Fatalf("metric not exposed:\n%s", rec.Body.String())
	}
}
