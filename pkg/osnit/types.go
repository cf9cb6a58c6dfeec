package osnit

import "time"

// Severity levels in display order, most severe first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

var Severities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Incident is one reported threat/event record. Text fields are empty when the
// backend omitted them or sent a non-text value.
type Incident struct {
	ID           string     `json:"id" yaml:"id"`
	Source       string     `json:"source,omitempty" yaml:"source,omitempty"`
	Content      string     `json:"content,omitempty" yaml:"content,omitempty"`
	Summary      string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	URL          string     `json:"url,omitempty" yaml:"url,omitempty"`
	Country      string     `json:"country,omitempty" yaml:"country,omitempty"`
	State        string     `json:"state,omitempty" yaml:"state,omitempty"`
	IncidentType string     `json:"incident_type,omitempty" yaml:"incident_type,omitempty"`
	Severity     string     `json:"severity,omitempty" yaml:"severity,omitempty"`
	RiskScore    *float64   `json:"risk_score,omitempty" yaml:"risk_score,omitempty"`
	Lat          *float64   `json:"geo_lat,omitempty" yaml:"geo_lat,omitempty"`
	Lon          *float64   `json:"geo_lon,omitempty" yaml:"geo_lon,omitempty"`
	CollectedAt  *time.Time `json:"collected_at,omitempty" yaml:"collected_at,omitempty"`
}

// Risk returns the risk score, or 0 when the incident has none.
func (i Incident) Risk() float64 {
	if i.RiskScore == nil {
		return 0
	}
	return *i.RiskScore
}

type TypeCount struct {
	IncidentType string `json:"incident_type" yaml:"incident_type"`
	Count        int    `json:"count" yaml:"count"`
}

type ClusterCount struct {
	ClusterID     *int `json:"cluster_id" yaml:"cluster_id"`
	IncidentCount int  `json:"incident_count" yaml:"incident_count"`
}

// Summary holds aggregate counts. The legacy stats endpoint fills
// TotalIncidents and CategoryBreakdown.
type Summary struct {
	TotalIncidents    int            `json:"total_incidents" yaml:"total_incidents"`
	SeverityBreakdown map[string]int `json:"severity_breakdown,omitempty" yaml:"severity_breakdown,omitempty"`
	CategoryBreakdown map[string]int `json:"category_breakdown,omitempty" yaml:"category_breakdown,omitempty"`
	TopIncidentTypes  []TypeCount    `json:"top_incident_types,omitempty" yaml:"top_incident_types,omitempty"`
	TopClusters       []ClusterCount `json:"top_clusters,omitempty" yaml:"top_clusters,omitempty"`
	AverageRiskScore  float64        `json:"average_risk_score" yaml:"average_risk_score"`
	TotalAlerts       int            `json:"total_alerts" yaml:"total_alerts"`
	IncidentsLast24h  int            `json:"incidents_last_24h" yaml:"incidents_last_24h"`
}

type TrendPoint struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Count  int    `json:"count" yaml:"count"`
}

type Alert struct {
	ID                string     `json:"id" yaml:"id"`
	Keyword           string     `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	AlertType         string     `json:"alert_type,omitempty" yaml:"alert_type,omitempty"`
	Country           string     `json:"country,omitempty" yaml:"country,omitempty"`
	State             string     `json:"state,omitempty" yaml:"state,omitempty"`
	SpikeRatio        float64    `json:"spike_ratio" yaml:"spike_ratio"`
	ThreatProbability float64    `json:"threat_probability" yaml:"threat_probability"`
	Confidence        float64    `json:"confidence" yaml:"confidence"`
	SourceCount       int        `json:"source_count" yaml:"source_count"`
	CreatedAt         *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

type RiskScore struct {
	Region         string  `json:"region" yaml:"region"`
	AvgRisk        float64 `json:"avg_risk" yaml:"avg_risk"`
	MaxRisk        float64 `json:"max_risk" yaml:"max_risk"`
	TotalIncidents int     `json:"total_incidents" yaml:"total_incidents"`
}

type TopThreat struct {
	ID           string   `json:"id" yaml:"id"`
	IncidentType string   `json:"incident_type,omitempty" yaml:"incident_type,omitempty"`
	RiskScore    *float64 `json:"risk_score,omitempty" yaml:"risk_score,omitempty"`
	ClusterID    string   `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`
}

type Spike struct {
	Category      string  `json:"category" yaml:"category"`
	PreviousCount int     `json:"previous_count" yaml:"previous_count"`
	CurrentCount  int     `json:"current_count" yaml:"current_count"`
	GrowthRate    float64 `json:"growth_rate" yaml:"growth_rate"`
}

type SchedulerStatus struct {
	Running bool `json:"running" yaml:"running"`
}

// OperationResult is whatever the backend answered to an operational trigger.
type OperationResult map[string]any
