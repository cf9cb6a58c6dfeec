package osnit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
}

// fakeBackend answers with canned bodies per path and records every request.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	bodies   map[string]string
	statuses map[string]int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
	body, ok := f.bodies[r.URL.Path]
	status := f.statuses[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (f *fakeBackend) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, f *fakeBackend, variant string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", Variant: variant})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientIncidentsSendsLimit(t *testing.T) {
	f := &fakeBackend{bodies: map[string]string{"/incidents/": `{"incidents":[{"id":1},{"id":2}]}`}}
	c := newTestClient(t, f, "")

	got, err := c.Incidents(context.Background(), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(got))
	}
	if req := f.last(); req.Method != "GET" || req.Query != "limit=200" {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := c.Incidents(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := f.last(); req.Query != "" {
		t.Fatalf("expected no query without a limit, got %q", req.Query)
	}
}

func TestClientSummaryFollowsVariant(t *testing.T) {
	f := &fakeBackend{bodies: map[string]string{
		"/intelligence/summary": `{"total_incidents":5}`,
		"/incidents/stats":      `{"total_incidents":9}`,
	}}

	tests := []struct {
		variant string
		path    string
		total   int
	}{
		{VariantIntelligence, "/intelligence/summary", 5},
		{VariantLegacy, "/incidents/stats", 9},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			c := newTestClient(t, f, tt.variant)
			got, err := c.Summary(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TotalIncidents != tt.total {
				t.Fatalf("expected total %d, got %d", tt.total, got.TotalIncidents)
			}
			if req := f.last(); req.Path != tt.path {
				t.Fatalf("expected %s, got %s", tt.path, req.Path)
			}
		})
	}
}

func TestClientNon2xxIsUnavailable(t *testing.T) {
	f := &fakeBackend{
		bodies: map[string]string{
			"/intelligence/alerts": `<!DOCTYPE html><html><head><title>502 Bad Gateway</title></head><body>nginx</body></html>`,
			"/intelligence/trend":  `{"detail":"boom"}`,
		},
		statuses: map[string]int{
			"/intelligence/alerts": http.StatusBadGateway,
			"/intelligence/trend":  http.StatusInternalServerError,
		},
	}
	c := newTestClient(t, f, "")

	_, err := c.Alerts(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected a StatusError, got %T", err)
	}
	if se.StatusCode != http.StatusBadGateway || se.Title != "502 Bad Gateway" {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if !strings.Contains(err.Error(), "502 Bad Gateway") {
		t.Fatalf("expected the page title in the message, got %q", err.Error())
	}

	_, err = c.Trend(context.Background())
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError || se.Title != "" {
		t.Fatalf("unexpected trend error: %v", err)
	}
}

func TestClientDecodeAndTransportErrorsAreUnavailable(t *testing.T) {
	f := &fakeBackend{bodies: map[string]string{"/intelligence/risk-scores": `{"risk_scores": [`}}
	c := newTestClient(t, f, "")

	if _, err := c.RiskScores(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for a bad body, got %v", err)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	dead, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := dead.SchedulerStatus(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for a closed server, got %v", err)
	}
}

func TestClientTriggerMethods(t *testing.T) {
	f := &fakeBackend{bodies: map[string]string{
		"/operations/start-scheduler": `{"message":"Scheduler started"}`,
		"/operations/db-stats":        `{"incidents":120}`,
	}}
	c := newTestClient(t, f, "")

	res, err := c.Trigger(context.Background(), OpStartScheduler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res["message"] != "Scheduler started" {
		t.Fatalf("unexpected result: %#v", res)
	}
	if req := f.last(); req.Method != "POST" || req.Path != "/operations/start-scheduler" {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := c.Trigger(context.Background(), OpDBStats); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := f.last(); req.Method != "GET" {
		t.Fatalf("db-stats should be a GET, got %s", req.Method)
	}
}

func TestClientRouteOverride(t *testing.T) {
	f := &fakeBackend{bodies: map[string]string{"/v2/alerts": `[]`}}
	srv := httptest.NewServer(f)
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Routes: map[string]string{"alerts": "v2/alerts"}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.Alerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty alerts, got %#v", got)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected an error without a base URL")
	}
	if _, err := NewClient(Config{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected an error for an invalid base URL")
	}
	if _, err := NewClient(Config{BaseURL: "http://x", Variant: "v3"}); err == nil {
		t.Fatal("expected an error for an unknown variant")
	}
	if _, err := NewClient(Config{BaseURL: "http://x", Routes: map[string]string{"nope": "/x"}}); err == nil {
		t.Fatal("expected an error for an unknown route")
	}
}
