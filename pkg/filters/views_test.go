package filters

import (
	"reflect"
	"testing"

	"github.com/osnit-shield/osnit/pkg/osnit"
)

func TestSeverityBuckets(t *testing.T) {
	incidents := []osnit.Incident{
		{ID: "a", Severity: "high", RiskScore: risk(0.3)},
		{ID: "b", Severity: "critical", RiskScore: risk(0.9)},
		{ID: "c", Severity: "High", RiskScore: risk(0.8)},
		{ID: "d", Severity: "high"},
		{ID: "e", Severity: "high", RiskScore: risk(0.3)},
	}

	buckets := SeverityBuckets(incidents)
	if len(buckets) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(buckets))
	}

	var gotSev []string
	for _, b := range buckets {
		gotSev = append(gotSev, b.Severity)
	}
	if !reflect.DeepEqual(gotSev, osnit.Severities) {
		t.Fatalf("unexpected bucket order: %v", gotSev)
	}

	high := buckets[1]
	if high.Count != 4 {
		t.Fatalf("expected 4 high incidents, got %d", high.Count)
	}
	if got, want := ids(high.Incidents), []string{"c", "a", "e", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected high order.\nwant: %v\ngot:  %v", want, got)
	}
	if high.Top == nil || high.Top.ID != "c" {
		t.Fatalf("expected top high incident c, got %+v", high.Top)
	}

	if low := buckets[3]; low.Count != 0 || low.Top != nil || low.Incidents == nil {
		t.Fatalf("expected an empty low bucket, got %+v", low)
	}
}

func TestBorderIncidents(t *testing.T) {
	incidents := []osnit.Incident{
		{ID: "1", Country: "India", RiskScore: risk(0.9)},
		{ID: "2", Country: "Pakistan", RiskScore: risk(0.2)},
		{ID: "3", Country: "People's Republic of China", RiskScore: risk(0.6)},
		{ID: "4", Country: "", RiskScore: risk(1)},
		{ID: "5", Country: "SRI LANKA", RiskScore: risk(0.6)},
	}

	got := ids(BorderIncidents(incidents, DefaultBorderCountries))
	want := []string{"3", "5", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected border incidents.\nwant: %v\ngot:  %v", want, got)
	}
}

func TestBorderIncidentsNoCountries(t *testing.T) {
	got := BorderIncidents([]osnit.Incident{{ID: "1", Country: "Nepal"}}, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}
