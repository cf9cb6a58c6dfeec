package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/state"
)

// DefaultInterval is the time between two refresh cycles.
const DefaultInterval = 30 * time.Second

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Observer receives refresh outcomes, typically to feed metrics.
type Observer interface {
	ObserveFetch(resource string, err error)
	ObserveCycle(d time.Duration, finished time.Time)
	ObserveSkip()
	SetIncidents(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, error)            {}
func (nopObserver) ObserveCycle(time.Duration, time.Time) {}
func (nopObserver) ObserveSkip()                          {}
func (nopObserver) SetIncidents(int)                      {}

// Config holds everything an Aggregator needs.
type Config struct {
	Endpoints []Endpoint
	Store     *state.Store  // required
	Interval  time.Duration // defaults to DefaultInterval if <= 0
	Log       Logger        // optional; nil = no logging
	Metrics   Observer      // optional

	// OnCycle is called after every scheduled cycle has been published.
	// Nil = no callback.
	OnCycle func(results []Result)

	Now func() time.Time // optional; defaults to time.Now
}

// Aggregator refreshes every endpoint concurrently, once immediately and then
// on a fixed interval, and publishes successful fetches to the store.
type Aggregator struct {
	endpoints []Endpoint
	store     *state.Store
	interval  time.Duration
	log       Logger
	obs       Observer
	onCycle   func([]Result)
	now       func() time.Time

	// job is the scheduled cycle wrapped so a tick that finds the previous
	// cycle still running is dropped.
	job cron.Job

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

func New(cfg Config) (*Aggregator, error) {
	if cfg.Store == nil {
		return nil, errors.New("polling: store is required")
	}
	a := &Aggregator{
		endpoints: cfg.Endpoints,
		store:     cfg.Store,
		interval:  cfg.Interval,
		log:       cfg.Log,
		obs:       cfg.Metrics,
		onCycle:   cfg.OnCycle,
		now:       cfg.Now,
	}
	if a.interval <= 0 {
		a.interval = DefaultInterval
	}
	if a.log == nil {
		a.log = nopLogger{}
	}
	if a.obs == nil {
		a.obs = nopObserver{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	cl := cronLogger{log: a.log, obs: a.obs}
	a.job = cron.NewChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)).Then(cron.FuncJob(a.tick))
	return a, nil
}

func (a *Aggregator) Store() *state.Store { return a.store }

func (a *Aggregator) Interval() time.Duration { return a.interval }

// RefreshAll fetches every endpoint concurrently and waits for all of them.
// Successful results replace their snapshot, failed ones leave it alone, and
// the store's last-updated time is set once everything has settled. Failures
// are reported in the returned results only.
func (a *Aggregator) RefreshAll(ctx context.Context) []Result {
	start := a.now()

	results := make([]Result, len(a.endpoints))
	var wg sync.WaitGroup
	for i, ep := range a.endpoints {
		wg.Add(1)
		go func(i int, ep Endpoint) {
			defer wg.Done()
			results[i] = ep.fetch(ctx)
		}(i, ep)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		a.publish(r)
	}
	if failed > 0 && failed == len(results) {
		a.log.Warnf("All %d resources failed to refresh", failed)
	}

	finished := a.now()
	if a.store.MarkUpdated(finished) {
		a.obs.ObserveCycle(finished.Sub(start), finished)
	}
	return results
}

// RefreshOne fetches a single resource and publishes it on success. It does
// not move the last-updated time.
func (a *Aggregator) RefreshOne(ctx context.Context, r osnit.Resource) (Result, error) {
	for _, ep := range a.endpoints {
		if ep.Resource == r {
			res := ep.fetch(ctx)
			a.publish(res)
			return res, nil
		}
	}
	return Result{}, fmt.Errorf("resource %s is not polled", r)
}

func (a *Aggregator) publish(r Result) {
	a.obs.ObserveFetch(string(r.Resource), r.Err)
	if r.Err != nil {
		a.log.Debugf("Keeping previous %s snapshot: %v", r.Resource, r.Err)
		return
	}
	if !a.store.Publish(r.Resource, r.Value) {
		a.log.Debugf("Store closed, dropping %s", r.Resource)
		return
	}
	if incidents, ok := r.Value.([]osnit.Incident); ok && r.Resource == osnit.ResourceIncidents {
		a.obs.SetIncidents(len(incidents))
	}
}

func (a *Aggregator) tick() {
	results := a.RefreshAll(a.ctx)
	if a.onCycle != nil && !a.store.Closed() {
		a.onCycle(results)
	}
}

// Start runs one cycle right away and schedules the next ones every interval.
// A tick that arrives while a cycle is still running is skipped.
func (a *Aggregator) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return errors.New("polling: aggregator already stopped")
	}
	if a.started {
		return errors.New("polling: aggregator already started")
	}
	a.started = true

	a.cron = cron.New(cron.WithLogger(cronLogger{log: a.log, obs: a.obs}))
	a.cron.Schedule(cron.Every(a.interval), a.job)
	a.cron.Start()
	a.log.Debugf("Polling %d resources every %s", len(a.endpoints), a.interval)

	go a.job.Run()
	return nil
}

// Stop cancels the schedule and any in-flight requests, then closes the
// store so results that still come back are dropped. It is safe to call
// more than once.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.stopped = true
	if a.cron != nil {
		a.cron.Stop()
	}
	a.cancel()
	a.store.Close()
}

// cronLogger routes cron's structured logging to a Logger and counts skipped
// ticks.
type cronLogger struct {
	log Logger
	obs Observer
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.obs.ObserveSkip()
		l.log.Debugf("Previous refresh still running, skipping tick")
		return
	}
	l.log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
