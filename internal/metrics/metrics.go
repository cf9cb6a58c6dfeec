package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks refresh cycles. It satisfies polling.Observer.
type Metrics struct {
	registry *prometheus.Registry

	refreshTotal    *prometheus.CounterVec
	cycleDur        prometheus.Summary
	cyclesSkipped   prometheus.Counter
	lastUpdatedTS   prometheus.Gauge
	incidentsLoaded prometheus.Gauge
	opsTotal        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.refreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osnit",
		Name:      "refresh_total",
		Help:      "Resource fetches by outcome",
	}, []string{"resource", "status"})
	m.cycleDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "osnit",
		Name:      "refresh_cycle_duration_seconds",
		Help:      "Time spent on one full refresh cycle",
	})
	m.cyclesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "osnit",
		Name:      "refresh_cycles_skipped_total",
		Help:      "Ticks dropped because the previous cycle was still running",
	})
	m.lastUpdatedTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "osnit",
		Name:      "last_updated_timestamp_seconds",
		Help:      "Unix timestamp of the last finished refresh cycle",
	})
	m.incidentsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "osnit",
		Name:      "incidents_loaded",
		Help:      "Incidents in the current snapshot",
	})
	m.opsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osnit",
		Name:      "operations_total",
		Help:      "Operational triggers sent, by outcome",
	}, []string{"operation", "status"})

	m.registry.MustRegister(
		m.refreshTotal, m.cycleDur, m.cyclesSkipped,
		m.lastUpdatedTS, m.incidentsLoaded, m.opsTotal,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveFetch(resource string, err error) {
	m.refreshTotal.WithLabelValues(resource, status(err)).Inc()
}

func (m *Metrics) ObserveCycle(d time.Duration, finished time.Time) {
	m.cycleDur.Observe(d.Seconds())
	m.lastUpdatedTS.Set(float64(finished.Unix()))
}

func (m *Metrics) ObserveSkip() {
	m.cyclesSkipped.Inc()
}

func (m *Metrics) SetIncidents(n int) {
	m.incidentsLoaded.Set(float64(n))
}

func (m *Metrics) ObserveOperation(op string, err error) {
	m.opsTotal.WithLabelValues(op, status(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
