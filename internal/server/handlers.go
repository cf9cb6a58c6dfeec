package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/osnit"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type stateResponse struct {
	LastUpdated *time.Time             `json:"last_updated"`
	Selection   filters.Selection      `json:"selection"`
	Resources   map[osnit.Resource]any `json:"resources"`
	Scheduler   *osnit.SchedulerStatus `json:"scheduler,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		Selection: s.Store.Selection(),
		Resources: map[osnit.Resource]any{},
	}
	if t := s.Store.LastUpdated(); !t.IsZero() {
		resp.LastUpdated = &t
	}
	for _, res := range s.Store.Resources() {
		v, _ := s.Store.Snapshot(res)
		resp.Resources[res] = v
	}
	if st, ok := s.Store.SchedulerStatus(); ok {
		resp.Scheduler = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

type incidentsResponse struct {
	Selection filters.Selection `json:"selection"`
	Filtered  bool              `json:"filtered"`
	Total     int               `json:"total"`
	Count     int               `json:"count"`
	Incidents []osnit.Incident  `json:"incidents"`
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	all := s.Store.Incidents()
	sel := s.Store.Selection()
	matched := filters.Apply(all, sel)
	writeJSON(w, http.StatusOK, incidentsResponse{
		Selection: sel,
		Filtered:  sel.Active(),
		Total:     len(all),
		Count:     len(matched),
		Incidents: matched,
	})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filters.Derive(s.Store.Incidents()))
}

type viewsResponse struct {
	Selection       filters.Selection        `json:"selection"`
	SeverityBuckets []filters.SeverityBucket `json:"severity_buckets"`
	Border          []osnit.Incident         `json:"border"`
	Alerts          []osnit.Alert            `json:"alerts"`
	RiskScores      []osnit.RiskScore        `json:"risk_scores"`
	TopThreats      []osnit.TopThreat        `json:"top_threats"`
	Map             []osnit.Incident         `json:"map"`
	Trend           []osnit.TrendPoint       `json:"trend"`
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	sel := s.Store.Selection()
	all := s.Store.Incidents()

	border := s.BorderCountries
	if len(border) == 0 {
		border = filters.DefaultBorderCountries
	}

	writeJSON(w, http.StatusOK, viewsResponse{
		Selection:       sel,
		SeverityBuckets: filters.SeverityBuckets(all),
		Border:          filters.BorderIncidents(all, border),
		Alerts:          s.Store.Alerts(),
		RiskScores:      s.Store.RiskScores(),
		TopThreats:      s.Store.TopThreats(),
		Map:             s.Store.MapIncidents(),
		Trend:           s.Store.Trend(),
	})
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Selection())
}

// FilterRequest changes the selection. Absent fields are left alone;
// Severity toggles.
type FilterRequest struct {
	Country      *string `json:"country"`
	State        *string `json:"state"`
	IncidentType *string `json:"incident_type"`
	Severity     *string `json:"severity"`
	Clear        bool    `json:"clear"`
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sel := s.Store.UpdateSelection(func(sel filters.Selection) filters.Selection {
		if req.Clear {
			sel = filters.Selection{}
		}
		if req.Country != nil {
			sel = sel.WithCountry(*req.Country)
		}
		if req.State != nil {
			sel = sel.WithState(*req.State)
		}
		if req.IncidentType != nil {
			sel = sel.WithIncidentType(*req.IncidentType)
		}
		if req.Severity != nil {
			sel = sel.WithSeverity(*req.Severity)
		}
		return sel
	})
	writeJSON(w, http.StatusOK, sel)
}

type SeverityRequest struct {
	Severity string `json:"severity"`
}

func (s *Server) handleToggleSeverity(w http.ResponseWriter, r *http.Request) {
	var req SeverityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sel := s.Store.UpdateSelection(func(sel filters.Selection) filters.Selection {
		return sel.WithSeverity(req.Severity)
	})
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	if s.Ops == nil {
		writeError(w, http.StatusServiceUnavailable, osnit.ErrUnavailable)
		return
	}
	op, err := osnit.ParseOperation(r.PathValue("action"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	entry, err := s.Ops.Run(r.Context(), op)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, entry)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleOpLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.OpLog())
}

type refreshResult struct {
	Resource osnit.Resource `json:"resource"`
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.Aggregator == nil {
		writeError(w, http.StatusServiceUnavailable, osnit.ErrUnavailable)
		return
	}
	results := s.Aggregator.RefreshAll(r.Context())
	out := make([]refreshResult, 0, len(results))
	for _, res := range results {
		rr := refreshResult{Resource: res.Resource, OK: res.OK()}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		}
		out = append(out, rr)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_updated": s.Store.LastUpdated(),
		"results":      out,
	})
}
