package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := New()

	m.ObserveFetch("alerts", errors.New("boom"))
	m.ObserveFetch("alerts", nil)
	m.ObserveFetch("incidents", nil)
	m.ObserveSkip()
	m.SetIncidents(42)
	m.ObserveOperation("run-ai", nil)

	finished := time.Unix(1700000000, 0)
	m.ObserveCycle(2*time.Second, finished)

	if got := testutil.ToFloat64(m.refreshTotal.WithLabelValues("alerts", "error")); got != 1 {
		t.Fatalf("alerts errors: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.refreshTotal.WithLabelValues("alerts", "ok")); got != 1 {
		t.Fatalf("alerts ok: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.cyclesSkipped); got != 1 {
		t.Fatalf("skipped: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.incidentsLoaded); got != 42 {
		t.Fatalf("incidents: want 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastUpdatedTS); got != 1700000000 {
		t.Fatalf("last updated: want 1700000000, got %v", got)
	}
	if got := testutil.ToFloat64(m.opsTotal.WithLabelValues("run-ai", "ok")); got != 1 {
		t.Fatalf("operations: want 1, got %v", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.ObserveFetch("summary", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `osnit_refresh_total{resource="summary",status="ok"} 1`) {
		t.Fatalf("refresh counter missing from exposition:\n%s", body)
	}
}
