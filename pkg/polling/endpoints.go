package polling

import (
	"context"

	"github.com/osnit-shield/osnit/pkg/osnit"
)

// Endpoint is one polled resource.
type Endpoint struct {
	Resource osnit.Resource
	Fetch    func(ctx context.Context) (any, error)
}

// Result is the outcome of one fetch: Value on success, Err otherwise.
type Result struct {
	Resource osnit.Resource
	Value    any
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

func (ep Endpoint) fetch(ctx context.Context) Result {
	v, err := ep.Fetch(ctx)
	if err != nil {
		return Result{Resource: ep.Resource, Err: err}
	}
	return Result{Resource: ep.Resource, Value: v}
}

// Backend is the subset of *osnit.Client the aggregator polls.
type Backend interface {
	Incidents(ctx context.Context, limit int) ([]osnit.Incident, error)
	MapIncidents(ctx context.Context) ([]osnit.Incident, error)
	Summary(ctx context.Context) (osnit.Summary, error)
	Trend(ctx context.Context) ([]osnit.TrendPoint, error)
	Alerts(ctx context.Context) ([]osnit.Alert, error)
	RiskScores(ctx context.Context) ([]osnit.RiskScore, error)
	TopThreats(ctx context.Context) ([]osnit.TopThreat, error)
	Spikes(ctx context.Context) ([]osnit.Spike, error)
	SchedulerStatus(ctx context.Context) (osnit.SchedulerStatus, error)
}

// Endpoints returns the default resource set of b, plus top threats, spikes
// and the map when extended is set. limit is the incidents page size.
func Endpoints(b Backend, limit int, extended bool) []Endpoint {
	resources := append([]osnit.Resource(nil), osnit.DefaultResources...)
	if extended {
		resources = append(resources, osnit.ExtendedResources...)
	}

	out := make([]Endpoint, 0, len(resources))
	for _, r := range resources {
		out = append(out, Endpoint{Resource: r, Fetch: fetcherFor(b, r, limit)})
	}
	return out
}

func fetcherFor(b Backend, r osnit.Resource, limit int) func(context.Context) (any, error) {
	switch r {
	case osnit.ResourceIncidents:
		return fetchOf(func(ctx context.Context) ([]osnit.Incident, error) {
			return b.Incidents(ctx, limit)
		})
	case osnit.ResourceMap:
		return fetchOf(b.MapIncidents)
	case osnit.ResourceSummary:
		return fetchOf(b.Summary)
	case osnit.ResourceTrend:
		return fetchOf(b.Trend)
	case osnit.ResourceAlerts:
		return fetchOf(b.Alerts)
	case osnit.ResourceRiskScores:
		return fetchOf(b.RiskScores)
	case osnit.ResourceTopThreats:
		return fetchOf(b.TopThreats)
	case osnit.ResourceSpikes:
		return fetchOf(b.Spikes)
	case osnit.ResourceSchedulerStatus:
		return fetchOf(b.SchedulerStatus)
	}
	return func(context.Context) (any, error) {
		return nil, osnit.ErrUnavailable
	}
}

func fetchOf[T any](fn func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
