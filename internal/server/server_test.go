package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osnit-shield/osnit/internal/metrics"
	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/ops"
	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/polling"
	"github.com/osnit-shield/osnit/pkg/state"
)

type fakeTrigger struct{}

func (fakeTrigger) Trigger(ctx context.Context, op osnit.Operation) (osnit.OperationResult, error) {
	return osnit.OperationResult{"status": "ok"}, nil
}

func newTestServer(t *testing.T) (*Server, *state.Store) {
	t.Helper()
	store := state.New()
	store.Publish(osnit.ResourceIncidents, []osnit.Incident{
		{ID: "1", Country: "India", State: "Kerala", IncidentType: "Cyber", Severity: "high"},
		{ID: "2", Country: "Pakistan", State: "Punjab", IncidentType: "Terror", Severity: "critical"},
		{ID: "3", Country: "India", State: "Assam", IncidentType: "Cyber", Severity: "low"},
	})

	eps := []polling.Endpoint{{
		Resource: osnit.ResourceSummary,
		Fetch: func(ctx context.Context) (any, error) {
			return osnit.Summary{TotalIncidents: 3}, nil
		},
	}}
	m := metrics.New()
	agg, err := polling.New(polling.Config{Endpoints: eps, Store: store, Metrics: m})
	if err != nil {
		t.Fatalf("polling.New: %v", err)
	}
	runner := &ops.Runner{Backend: fakeTrigger{}, Store: store, Metrics: m}
	return New(store, agg, runner, m), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIRoutesReturnJSON(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	routes := []struct {
		method, path, body string
	}{
		{"GET", "/api/state", ""},
		{"GET", "/api/incidents", ""},
		{"GET", "/api/facets", ""},
		{"GET", "/api/views", ""},
		{"GET", "/api/filters", ""},
		{"POST", "/api/filters", `{"country":"india"}`},
		{"POST", "/api/filters/severity", `{"severity":"high"}`},
		{"POST", "/api/ops/run-ai", ""},
		{"GET", "/api/ops/log", ""},
		{"POST", "/api/refresh", ""},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := do(t, h, rt.method, rt.path, rt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %q", ct)
			}
			if !json.Valid(rec.Body.Bytes()) {
				t.Fatalf("invalid JSON: %s", rec.Body.String())
			}
		})
	}
}

func TestIncidentsApplyStoredSelection(t *testing.T) {
	s, store := newTestServer(t)
	h := s.Handler()

	do(t, h, "POST", "/api/filters", `{"country":"INDIA","incident_type":"cyber"}`)
	if sel := store.Selection(); sel.Country != "INDIA" || sel.IncidentType != "cyber" {
		t.Fatalf("selection not stored: %+v", sel)
	}

	var resp incidentsResponse
	rec := do(t, h, "GET", "/api/incidents", "")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || resp.Count != 2 || !resp.Filtered {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Incidents[0].ID != "1" || resp.Incidents[1].ID != "3" {
		t.Fatalf("unexpected incidents: %+v", resp.Incidents)
	}
}

func TestSeverityToggleEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	h := s.Handler()

	do(t, h, "POST", "/api/filters/severity", `{"severity":"high"}`)
	if got := store.Selection().Severity; got != "high" {
		t.Fatalf("want high, got %q", got)
	}
	do(t, h, "POST", "/api/filters/severity", `{"severity":"high"}`)
	if got := store.Selection().Severity; got != "" {
		t.Fatalf("second select should clear, got %q", got)
	}

	do(t, h, "POST", "/api/filters", `{"country":"x","severity":"low"}`)
	rec := do(t, h, "POST", "/api/filters", `{"clear":true}`)
	var sel filters.Selection
	json.NewDecoder(rec.Body).Decode(&sel)
	if sel.Active() {
		t.Fatalf("clear should reset the selection, got %+v", sel)
	}
}

func TestFacetsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), "GET", "/api/facets", "")

	var f filters.Facets
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Countries) != 2 || f.Countries[0] != "India" || len(f.Severities) != 4 {
		t.Fatalf("unexpected facets: %+v", f)
	}
}

func TestOperationsEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, "POST", "/api/ops/format-disk", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown operation: want 404, got %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/ops/run-ingestion", ""); rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if log := store.OpLog(); len(log) != 1 || log[0].Operation != osnit.OpRunIngestion {
		t.Fatalf("unexpected op log: %+v", log)
	}
}

func TestRefreshEndpointPublishes(t *testing.T) {
	s, store := newTestServer(t)
	do(t, s.Handler(), "POST", "/api/refresh", "")

	if sum, ok := store.Summary(); !ok || sum.TotalIncidents != 3 {
		t.Fatalf("refresh did not publish summary: %+v", sum)
	}
	if store.LastUpdated().IsZero() {
		t.Fatal("refresh should set last updated")
	}
}

func TestBasicAuth(t *testing.T) {
	s, _ := newTestServer(t)
	s.Username, s.Password = "admin", "secret"
	h := s.Handler()

	if rec := do(t, h, "GET", "/api/state", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/state", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	if rec := do(t, h, "GET", "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz should not need auth, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	do(t, h, "POST", "/api/refresh", "")

	rec := do(t, h, "GET", "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "osnit_refresh_total") {
		t.Fatalf("unexpected metrics response %d:\n%s", rec.Code, rec.Body.String())
	}
}

func TestViewsShowEveryLevelUnderSelection(t *testing.T) {
	s, store := newTestServer(t)
	store.Publish(osnit.ResourceTopThreats, []osnit.TopThreat{{ID: "t1", IncidentType: "Cyber"}})
	store.UpdateSelection(func(filters.Selection) filters.Selection {
		return filters.Selection{Severity: "high"}
	})

	var resp viewsResponse
	rec := do(t, s.Handler(), "GET", "/api/views", "")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	counts := map[string]int{}
	for _, b := range resp.SeverityBuckets {
		counts[b.Severity] = b.Count
	}
	want := map[string]int{"critical": 1, "high": 1, "medium": 0, "low": 1}
	for sev, n := range want {
		if counts[sev] != n {
			t.Fatalf("bucket %s: want %d, got %d (%v)", sev, n, counts[sev], counts)
		}
	}
	if len(resp.Border) != 1 || resp.Border[0].ID != "2" {
		t.Fatalf("border list should come from every incident, got %+v", resp.Border)
	}
	if len(resp.TopThreats) != 1 || resp.TopThreats[0].ID != "t1" {
		t.Fatalf("unexpected top threats: %+v", resp.TopThreats)
	}
	if resp.Selection.Severity != "high" {
		t.Fatalf("selection should be echoed, got %+v", resp.Selection)
	}
}
