// Package filters derives facets from an incident snapshot and computes the
// filtered working sets every view is built from. Everything here is pure:
// inputs are never modified and nothing is cached between calls.
package filters

import (
	"strings"

	"github.com/osnit-shield/osnit/pkg/osnit"
)

// Selection is the user's filter choice. An empty field imposes no constraint.
type Selection struct {
	Country      string `json:"country" yaml:"country"`
	State        string `json:"state" yaml:"state"`
	IncidentType string `json:"incident_type" yaml:"incident_type"`
	Severity     string `json:"severity" yaml:"severity"`
}

func (s Selection) WithCountry(v string) Selection {
	s.Country = v
	return s
}

func (s Selection) WithState(v string) Selection {
	s.State = v
	return s
}

func (s Selection) WithIncidentType(v string) Selection {
	s.IncidentType = v
	return s
}

// WithSeverity toggles: selecting the active severity clears it, anything
// else replaces it.
func (s Selection) WithSeverity(v string) Selection {
	if v != "" && strings.EqualFold(s.Severity, v) {
		s.Severity = ""
		return s
	}
	s.Severity = v
	return s
}

// Active reports whether any constraint is set.
func (s Selection) Active() bool {
	return s.Country != "" || s.State != "" || s.IncidentType != "" || s.Severity != ""
}

// Apply returns the incidents matching every set field of sel, in input
// order. Country and state match as case-insensitive substrings, incident
// type and severity as case-insensitive equality.
func Apply(incidents []osnit.Incident, sel Selection) []osnit.Incident {
	country := strings.ToLower(sel.Country)
	state := strings.ToLower(sel.State)

	out := make([]osnit.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if country != "" && !strings.Contains(strings.ToLower(inc.Country), country) {
			continue
		}
		if state != "" && !strings.Contains(strings.ToLower(inc.State), state) {
			continue
		}
		if sel.IncidentType != "" && !strings.EqualFold(inc.IncidentType, sel.IncidentType) {
			continue
		}
		if sel.Severity != "" && !strings.EqualFold(inc.Severity, sel.Severity) {
			continue
		}
		out = append(out, inc)
	}
	return out
}
