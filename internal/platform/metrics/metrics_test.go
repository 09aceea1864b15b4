package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/patients/{patientID}/timeline", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := counterValue(t, HTTPRequestTotals.WithLabelValues(http.MethodGet, "/patients/{patientID}/timeline", "418"))

	req := httptest.NewRequest(http.MethodGet, "/patients/abc/timeline", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := counterValue(t, HTTPRequestTotals.WithLabelValues(http.MethodGet, "/patients/{patientID}/timeline", "418"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestTimelineRecorder(t *testing.T) {
	before := counterValue(t, TimelineTruncated)
	beforeRuns := counterValue(t, TimelineConsolidations)

	TimelineRecorder{}.ObserveConsolidation(3, 2, 1, time.Millisecond)

	if got := counterValue(t, TimelineTruncated) - before; got != 1 {
		t.Fatalf("expected 1 truncated item recorded, got %v", got)
	}
	if got := counterValue(t, TimelineConsolidations) - beforeRuns; got != 1 {
		t.Fatalf("expected 1 consolidation recorded, got %v", got)
	}
}
