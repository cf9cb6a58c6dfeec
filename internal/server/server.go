package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/osnit-shield/osnit/internal/metrics"
	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/ops"
	"github.com/osnit-shield/osnit/pkg/polling"
	"github.com/osnit-shield/osnit/pkg/state"
)

type Server struct {
	Store           *state.Store
	Aggregator      *polling.Aggregator
	Ops             *ops.Runner
	Metrics         *metrics.Metrics
	BorderCountries []string
	Username        string
	Password        string
}

func New(store *state.Store, agg *polling.Aggregator, runner *ops.Runner, m *metrics.Metrics) *Server {
	return &Server{
		Store:      store,
		Aggregator: agg,
		Ops:        runner,
		Metrics:    m,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.basicAuth(s.handleState))
	mux.HandleFunc("GET /api/incidents", s.basicAuth(s.handleIncidents))
	mux.HandleFunc("GET /api/facets", s.basicAuth(s.handleFacets))
	mux.HandleFunc("GET /api/views", s.basicAuth(s.handleViews))
	mux.HandleFunc("GET /api/filters", s.basicAuth(s.handleGetFilters))
	mux.HandleFunc("POST /api/filters", s.basicAuth(s.handleSetFilters))
	mux.HandleFunc("POST /api/filters/severity", s.basicAuth(s.handleToggleSeverity))
	mux.HandleFunc("POST /api/ops/{action}", s.basicAuth(s.handleOperation))
	mux.HandleFunc("GET /api/ops/log", s.basicAuth(s.handleOpLog))
	mux.HandleFunc("POST /api/refresh", s.basicAuth(s.handleRefresh))

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next(w, r)
	}
}
