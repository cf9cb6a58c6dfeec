package osnit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/osnit-shield/osnit/pkg/whttp"
)

// Config configures a backend Client.
type Config struct {
	BaseURL  string
	Variant  string            // intelligence (default) or legacy
	Routes   map[string]string // per-name path overrides
	Proxy    string
	Timeout  time.Duration
	RetryMax int

	// HTTPClient replaces the client built from Proxy/Timeout/RetryMax.
	HTTPClient *retryablehttp.Client
}

// Client reads resources from the backend and sends operational triggers.
type Client struct {
	baseURL string
	routes  Routes
	http    *retryablehttp.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %s", cfg.BaseURL)
	}

	routes, err := RoutesFor(cfg.Variant, cfg.Routes)
	if err != nil {
		return nil, err
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc, err = whttp.NewClient(whttp.ClientOptions{
			Proxy:    cfg.Proxy,
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Client{baseURL: base, routes: routes, http: hc}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// URL builds the absolute URL for a named route.
func (c *Client) URL(name string, query url.Values) (string, error) {
	path, ok := c.routes[name]
	if !ok {
		return "", fmt.Errorf("no route for %s", name)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

// do sends the request and returns the body of a 2xx response. Everything
// else comes back as ErrUnavailable.
func (c *Client) do(ctx context.Context, name, method string, query url.Values) (string, error) {
	u, err := c.URL(name, query)
	if err != nil {
		return "", unavailable(name, err)
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{URL: u, Method: method}, c.http)
	if err != nil {
		return "", unavailable(name, err)
	}
	if !res.IsSuccess() {
		return "", &StatusError{
			Name:       name,
			StatusCode: res.StatusCode,
			Title:      res.HTTPTitle,
			Body:       res.BodyString,
		}
	}
	return res.BodyString, nil
}

func (c *Client) get(ctx context.Context, r Resource, query url.Values) (string, error) {
	return c.do(ctx, string(r), "GET", query)
}

// Incidents fetches the incidents list. limit <= 0 omits the query parameter.
func (c *Client) Incidents(ctx context.Context, limit int) ([]Incident, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	body, err := c.get(ctx, ResourceIncidents, q)
	if err != nil {
		return nil, err
	}
	out, err := DecodeIncidents(body)
	if err != nil {
		return nil, unavailable(string(ResourceIncidents), err)
	}
	return out, nil
}

// MapIncidents fetches geolocated incidents.
func (c *Client) MapIncidents(ctx context.Context) ([]Incident, error) {
	body, err := c.get(ctx, ResourceMap, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeIncidents(body)
	if err != nil {
		return nil, unavailable(string(ResourceMap), err)
	}
	return out, nil
}

func (c *Client) Summary(ctx context.Context) (Summary, error) {
	body, err := c.get(ctx, ResourceSummary, nil)
	if err != nil {
		return Summary{}, err
	}
	out, err := DecodeSummary(body)
	if err != nil {
		return Summary{}, unavailable(string(ResourceSummary), err)
	}
	return out, nil
}

func (c *Client) Trend(ctx context.Context) ([]TrendPoint, error) {
	body, err := c.get(ctx, ResourceTrend, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeTrend(body)
	if err != nil {
		return nil, unavailable(string(ResourceTrend), err)
	}
	return out, nil
}

func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	body, err := c.get(ctx, ResourceAlerts, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeAlerts(body)
	if err != nil {
		return nil, unavailable(string(ResourceAlerts), err)
	}
	return out, nil
}

func (c *Client) RiskScores(ctx context.Context) ([]RiskScore, error) {
	body, err := c.get(ctx, ResourceRiskScores, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeRiskScores(body)
	if err != nil {
		return nil, unavailable(string(ResourceRiskScores), err)
	}
	return out, nil
}

func (c *Client) TopThreats(ctx context.Context) ([]TopThreat, error) {
	body, err := c.get(ctx, ResourceTopThreats, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeTopThreats(body)
	if err != nil {
		return nil, unavailable(string(ResourceTopThreats), err)
	}
	return out, nil
}

func (c *Client) Spikes(ctx context.Context) ([]Spike, error) {
	body, err := c.get(ctx, ResourceSpikes, nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeSpikes(body)
	if err != nil {
		return nil, unavailable(string(ResourceSpikes), err)
	}
	return out, nil
}

func (c *Client) SchedulerStatus(ctx context.Context) (SchedulerStatus, error) {
	body, err := c.get(ctx, ResourceSchedulerStatus, nil)
	if err != nil {
		return SchedulerStatus{}, err
	}
	out, err := DecodeSchedulerStatus(body)
	if err != nil {
		return SchedulerStatus{}, unavailable(string(ResourceSchedulerStatus), err)
	}
	return out, nil
}

// Trigger sends an operational trigger and returns the backend's answer
// without validating it.
func (c *Client) Trigger(ctx context.Context, op Operation) (OperationResult, error) {
	body, err := c.do(ctx, string(op), op.Method(), nil)
	if err != nil {
		return nil, err
	}
	out, err := DecodeOperationResult(body)
	if err != nil {
		return nil, unavailable(string(op), err)
	}
	return out, nil
}
