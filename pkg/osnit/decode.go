package osnit

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON body")

// Keys a list may be wrapped under, per resource.
var (
	incidentListKeys  = []string{"incidents", "data"}
	alertListKeys     = []string{"alerts", "data"}
	trendListKeys     = []string{"hourly_trends", "trend", "trends", "data"}
	riskScoreListKeys = []string{"risk_scores", "data"}
	topThreatListKeys = []string{"top_threats", "data"}
	spikeListKeys     = []string{"spikes", "data"}
)

// ListItems returns the elements of a list payload. The payload is either a
// bare JSON array or an object holding the array under one of keys, tried in
// order. Any other shape yields an empty, non-nil slice.
func ListItems(body string, keys ...string) ([]gjson.Result, error) {
	if !gjson.Valid(body) {
		return nil, errInvalidJSON
	}
	root := gjson.Parse(body)
	if root.IsArray() {
		return nonNil(root.Array()), nil
	}
	if root.IsObject() {
		for _, k := range keys {
			if v := root.Get(k); v.IsArray() {
				return nonNil(v.Array()), nil
			}
		}
	}
	return []gjson.Result{}, nil
}

// DecodeIncidents normalizes an incidents payload. Elements that are not
// JSON objects are dropped.
func DecodeIncidents(body string) ([]Incident, error) {
	items, err := ListItems(body, incidentListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]Incident, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, ParseIncident(it))
	}
	return out, nil
}

// ParseIncident reads one incident object.
func ParseIncident(r gjson.Result) Incident {
	inc := Incident{
		ID:           idField(r, "id"),
		Source:       textField(r, "source"),
		Content:      textField(r, "content"),
		Summary:      textField(r, "summary"),
		URL:          textField(r, "url"),
		Country:      textField(r, "country"),
		State:        textField(r, "state"),
		IncidentType: textField(r, "incident_type"),
		Severity:     textField(r, "severity"),
		RiskScore:    numberField(r, "risk_score"),
		Lat:          numberField(r, "geo_lat", "lat", "latitude"),
		Lon:          numberField(r, "geo_lon", "lon", "lng", "long", "longitude"),
		CollectedAt:  timeField(r, "collected_at"),
	}
	return inc
}

func DecodeAlerts(body string) ([]Alert, error) {
	items, err := ListItems(body, alertListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]Alert, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, Alert{
			ID:                idField(it, "id"),
			Keyword:           textField(it, "keyword"),
			AlertType:         textField(it, "alert_type", "alert_level"),
			Country:           textField(it, "country"),
			State:             textField(it, "state"),
			SpikeRatio:        floatOr(it, "spike_ratio"),
			ThreatProbability: floatOr(it, "threat_probability"),
			Confidence:        floatOr(it, "confidence"),
			SourceCount:       intOr(it, "source_count"),
			CreatedAt:         timeField(it, "created_at"),
		})
	}
	return out, nil
}

func DecodeTrend(body string) ([]TrendPoint, error) {
	items, err := ListItems(body, trendListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]TrendPoint, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, TrendPoint{
			Bucket: textField(it, "date", "hour", "bucket"),
			Count:  intOr(it, "count", "incident_count"),
		})
	}
	return out, nil
}

func DecodeRiskScores(body string) ([]RiskScore, error) {
	items, err := ListItems(body, riskScoreListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]RiskScore, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, RiskScore{
			Region:         textField(it, "region", "state"),
			AvgRisk:        floatOr(it, "avg_risk"),
			MaxRisk:        floatOr(it, "max_risk"),
			TotalIncidents: intOr(it, "total_incidents"),
		})
	}
	return out, nil
}

func DecodeTopThreats(body string) ([]TopThreat, error) {
	items, err := ListItems(body, topThreatListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]TopThreat, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, TopThreat{
			ID:           idField(it, "id"),
			IncidentType: textField(it, "incident_type"),
			RiskScore:    numberField(it, "risk_score"),
			ClusterID:    idField(it, "cluster_id"),
		})
	}
	return out, nil
}

func DecodeSpikes(body string) ([]Spike, error) {
	items, err := ListItems(body, spikeListKeys...)
	if err != nil {
		return nil, err
	}
	out := make([]Spike, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, Spike{
			Category:      textField(it, "category", "incident_type"),
			PreviousCount: intOr(it, "previous_count"),
			CurrentCount:  intOr(it, "current_count"),
			GrowthRate:    floatOr(it, "growth_rate"),
		})
	}
	return out, nil
}

// DecodeSummary reads the aggregate counts object.
func DecodeSummary(body string) (Summary, error) {
	var s Summary
	if !gjson.Parse(body).IsObject() {
		return s, errInvalidJSON
	}
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return s, err
	}
	return s, nil
}

func DecodeSchedulerStatus(body string) (SchedulerStatus, error) {
	if !gjson.Valid(body) {
		return SchedulerStatus{}, errInvalidJSON
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return SchedulerStatus{}, errInvalidJSON
	}
	return SchedulerStatus{Running: root.Get("running").Bool()}, nil
}

// DecodeOperationResult accepts any JSON document. Non-object results are
// wrapped under "result".
func DecodeOperationResult(body string) (OperationResult, error) {
	if strings.TrimSpace(body) == "" {
		return OperationResult{}, nil
	}
	if !gjson.Valid(body) {
		return nil, errInvalidJSON
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		return OperationResult(m), nil
	}
	return OperationResult{"result": v}, nil
}

func nonNil(items []gjson.Result) []gjson.Result {
	if items == nil {
		return []gjson.Result{}
	}
	return items
}

func idField(r gjson.Result, key string) string {
	v := r.Get(key)
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	}
	return ""
}

// textField returns the first key holding a non-empty JSON string.
func textField(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := r.Get(k)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func numberField(r gjson.Result, keys ...string) *float64 {
	for _, k := range keys {
		v := r.Get(k)
		switch v.Type {
		case gjson.Number:
			f := v.Num
			return &f
		case gjson.String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func floatOr(r gjson.Result, keys ...string) float64 {
	if f := numberField(r, keys...); f != nil {
		return *f
	}
	return 0
}

func intOr(r gjson.Result, keys ...string) int {
	return int(floatOr(r, keys...))
}

func timeField(r gjson.Result, keys ...string) *time.Time {
	for _, k := range keys {
		v := r.Get(k)
		var (
			t   time.Time
			err error
		)
		switch v.Type {
		case gjson.String:
			t, err = parseTimeFlexible(v.Str)
		case gjson.Number:
			t = time.Unix(v.Int(), 0).UTC()
		default:
			continue
		}
		if err == nil {
			return &t
		}
	}
	return nil
}

// Timestamps come from Python's isoformat, which omits the zone for naive
// datetimes, so those are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimeFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 10 {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, errors.New("unsupported time: " + s)
}
