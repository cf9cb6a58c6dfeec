package filters

import (
	"sort"
	"strings"

	"github.com/osnit-shield/osnit/pkg/osnit"
)

// DefaultBorderCountries are the neighbours watched by the risk view.
var DefaultBorderCountries = []string{
	"pakistan", "china", "bangladesh", "nepal",
	"bhutan", "myanmar", "sri lanka", "afghanistan",
}

// SeverityBucket groups the incidents of one severity level.
type SeverityBucket struct {
	Severity  string           `json:"severity" yaml:"severity"`
	Count     int              `json:"count" yaml:"count"`
	Top       *osnit.Incident  `json:"top,omitempty" yaml:"top,omitempty"`
	Incidents []osnit.Incident `json:"incidents" yaml:"incidents"`
}

// SeverityBuckets returns one bucket per severity level, most severe first.
// Each bucket is ordered by risk score, highest first; ties keep input order.
func SeverityBuckets(incidents []osnit.Incident) []SeverityBucket {
	out := make([]SeverityBucket, 0, len(osnit.Severities))
	for _, sev := range osnit.Severities {
		matched := Apply(incidents, Selection{Severity: sev})
		SortByRisk(matched)

		b := SeverityBucket{Severity: sev, Count: len(matched), Incidents: matched}
		if len(matched) > 0 {
			top := matched[0]
			b.Top = &top
		}
		out = append(out, b)
	}
	return out
}

// BorderIncidents returns incidents whose country mentions one of countries,
// case-insensitively, highest risk first.
func BorderIncidents(incidents []osnit.Incident, countries []string) []osnit.Incident {
	names := make([]string, 0, len(countries))
	for _, c := range countries {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			names = append(names, c)
		}
	}

	out := make([]osnit.Incident, 0)
	for _, inc := range incidents {
		country := strings.ToLower(inc.Country)
		if country == "" {
			continue
		}
		for _, n := range names {
			if strings.Contains(country, n) {
				out = append(out, inc)
				break
			}
		}
	}
	SortByRisk(out)
	return out
}

// SortByRisk orders incidents by risk score, highest first, in place.
// Incidents without a score sort as zero.
func SortByRisk(incidents []osnit.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].Risk() > incidents[j].Risk()
	})
}
