package filters

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/osnit-shield/osnit/pkg/osnit"
)

// MaxPlaceLength is the longest country or state label offered as a facet.
const MaxPlaceLength = 50

// Facets are the distinct selectable values of a snapshot.
type Facets struct {
	Countries     []string `json:"countries" yaml:"countries"`
	States        []string `json:"states" yaml:"states"`
	IncidentTypes []string `json:"incident_types" yaml:"incident_types"`
	Severities    []string `json:"severities" yaml:"severities"`
}

// Derive computes sorted, deduplicated facets from incidents. Country and
// state labels that are empty, contain a comma or run past MaxPlaceLength
// are left out; they are usually several regions packed into one field.
func Derive(incidents []osnit.Incident) Facets {
	countries := map[string]struct{}{}
	states := map[string]struct{}{}
	types := map[string]struct{}{}

	for _, inc := range incidents {
		if validPlace(inc.Country) {
			countries[inc.Country] = struct{}{}
		}
		if validPlace(inc.State) {
			states[inc.State] = struct{}{}
		}
		if inc.IncidentType != "" {
			types[inc.IncidentType] = struct{}{}
		}
	}

	return Facets{
		Countries:     sortedKeys(countries),
		States:        sortedKeys(states),
		IncidentTypes: sortedKeys(types),
		Severities:    append([]string(nil), osnit.Severities...),
	}
}

func validPlace(v string) bool {
	if v == "" || strings.Contains(v, ",") {
		return false
	}
	return utf8.RuneCountInString(v) <= MaxPlaceLength
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
