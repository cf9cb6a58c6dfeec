package osnit

import (
	"fmt"
	"strings"
)

// Resource names a polled backend resource.
type Resource string

const (
	ResourceIncidents       Resource = "incidents"
	ResourceSummary         Resource = "summary"
	ResourceTrend           Resource = "trend"
	ResourceMap             Resource = "map"
	ResourceAlerts          Resource = "alerts"
	ResourceRiskScores      Resource = "risk-scores"
	ResourceTopThreats      Resource = "top-threats"
	ResourceSpikes          Resource = "spikes"
	ResourceSchedulerStatus Resource = "scheduler-status"
)

// DefaultResources is the set refreshed on every cycle.
var DefaultResources = []Resource{
	ResourceSummary,
	ResourceTrend,
	ResourceAlerts,
	ResourceRiskScores,
	ResourceIncidents,
	ResourceSchedulerStatus,
}

// ExtendedResources are only polled when extended polling is enabled.
var ExtendedResources = []Resource{
	ResourceTopThreats,
	ResourceSpikes,
	ResourceMap,
}

// Operation names an operational trigger.
type Operation string

const (
	OpStartScheduler Operation = "start-scheduler"
	OpStopScheduler  Operation = "stop-scheduler"
	OpRunIngestion   Operation = "run-ingestion"
	OpRunAI          Operation = "run-ai"
	OpDBStats        Operation = "db-stats"
)

var Operations = []Operation{OpStartScheduler, OpStopScheduler, OpRunIngestion, OpRunAI, OpDBStats}

// Method returns the HTTP method the backend expects for op.
func (op Operation) Method() string {
	if op == OpDBStats {
		return "GET"
	}
	return "POST"
}

// ParseOperation accepts an operation name as typed by a user.
func ParseOperation(s string) (Operation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation: %s", s)
}

const (
	VariantIntelligence = "intelligence"
	VariantLegacy       = "legacy"
)

// Routes maps resource and operation names to paths relative to the base URL.
type Routes map[string]string

var intelligenceRoutes = Routes{
	string(ResourceIncidents):       "/incidents/",
	string(ResourceSummary):         "/intelligence/summary",
	string(ResourceTrend):           "/intelligence/trend",
	string(ResourceMap):             "/incidents/map",
	string(ResourceAlerts):          "/intelligence/alerts",
	string(ResourceRiskScores):      "/intelligence/risk-scores",
	string(ResourceTopThreats):      "/intelligence/top-threats",
	string(ResourceSpikes):          "/intelligence/spikes",
	string(ResourceSchedulerStatus): "/operations/scheduler-status",
	string(OpStartScheduler):        "/operations/start-scheduler",
	string(OpStopScheduler):         "/operations/stop-scheduler",
	string(OpRunIngestion):          "/operations/run-ingestion",
	string(OpRunAI):                 "/operations/run-ai",
	string(OpDBStats):               "/operations/db-stats",
}

// The legacy dashboard read aggregate counts from the incidents router.
var legacyOverrides = Routes{
	string(ResourceSummary): "/incidents/stats",
}

// DefaultLimit is the incidents page size each variant asked for.
func DefaultLimit(variant string) int {
	if strings.EqualFold(variant, VariantLegacy) {
		return 20
	}
	return 200
}

// RoutesFor returns the route table of variant with overrides applied on top.
func RoutesFor(variant string, overrides map[string]string) (Routes, error) {
	out := make(Routes, len(intelligenceRoutes))
	for k, v := range intelligenceRoutes {
		out[k] = v
	}

	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "", VariantIntelligence:
	case VariantLegacy:
		for k, v := range legacyOverrides {
			out[k] = v
		}
	default:
		return nil, fmt.Errorf("unknown api variant: %s", variant)
	}

	for k, v := range overrides {
		k = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(k), "_", "-"))
		if _, ok := out[k]; !ok {
			return nil, fmt.Errorf("unknown route name: %s", k)
		}
		if v = strings.TrimSpace(v); v != "" {
			if !strings.HasPrefix(v, "/") {
				v = "/" + v
			}
			out[k] = v
		}
	}
	return out, nil
}

