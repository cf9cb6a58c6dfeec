// Package state holds the latest snapshot of every polled resource together
// with the user's filter selection and the operations log. A Store is shared
// by reference between the aggregator and its consumers.
package state

import (
	"sync"
	"time"

	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/osnit"
)

// MaxOpLog is how many operations log entries are kept.
const MaxOpLog = 30

// OpLogEntry records one operational trigger and its outcome.
type OpLogEntry struct {
	Time      time.Time             `json:"time" yaml:"time"`
	Operation osnit.Operation       `json:"operation" yaml:"operation"`
	Result    osnit.OperationResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type Store struct {
	mu          sync.RWMutex
	snapshots   map[osnit.Resource]any
	lastUpdated time.Time
	selection   filters.Selection
	opLog       []OpLogEntry
	closed      bool
}

func New() *Store {
	return &Store{snapshots: make(map[osnit.Resource]any)}
}

// Publish replaces the snapshot of r. It reports false, and changes
// nothing, once the store is closed.
func (s *Store) Publish(r osnit.Resource, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.snapshots[r] = v
	return true
}

// MarkUpdated records the time of a finished refresh cycle.
func (s *Store) MarkUpdated(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.lastUpdated = t
	return true
}

// LastUpdated is zero until the first cycle finishes.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Snapshot returns the raw snapshot of r and whether one was ever published.
func (s *Store) Snapshot(r osnit.Resource) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.snapshots[r]
	return v, ok
}

// Resources lists the resources holding a snapshot.
func (s *Store) Resources() []osnit.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]osnit.Resource, 0, len(s.snapshots))
	for r := range s.snapshots {
		out = append(out, r)
	}
	return out
}

// Incidents never returns nil.
func (s *Store) Incidents() []osnit.Incident {
	return listOf[osnit.Incident](s, osnit.ResourceIncidents)
}

func (s *Store) MapIncidents() []osnit.Incident {
	return listOf[osnit.Incident](s, osnit.ResourceMap)
}

func (s *Store) Alerts() []osnit.Alert {
	return listOf[osnit.Alert](s, osnit.ResourceAlerts)
}

func (s *Store) Trend() []osnit.TrendPoint {
	return listOf[osnit.TrendPoint](s, osnit.ResourceTrend)
}

func (s *Store) RiskScores() []osnit.RiskScore {
	return listOf[osnit.RiskScore](s, osnit.ResourceRiskScores)
}

func (s *Store) TopThreats() []osnit.TopThreat {
	return listOf[osnit.TopThreat](s, osnit.ResourceTopThreats)
}

func (s *Store) Spikes() []osnit.Spike {
	return listOf[osnit.Spike](s, osnit.ResourceSpikes)
}

// Summary returns the zero Summary until one has been fetched.
func (s *Store) Summary() (osnit.Summary, bool) {
	v, ok := s.Snapshot(osnit.ResourceSummary)
	if !ok {
		return osnit.Summary{}, false
	}
	sum, ok := v.(osnit.Summary)
	return sum, ok
}

func (s *Store) SchedulerStatus() (osnit.SchedulerStatus, bool) {
	v, ok := s.Snapshot(osnit.ResourceSchedulerStatus)
	if !ok {
		return osnit.SchedulerStatus{}, false
	}
	st, ok := v.(osnit.SchedulerStatus)
	return st, ok
}

func listOf[T any](s *Store, r osnit.Resource) []T {
	v, _ := s.Snapshot(r)
	if items, ok := v.([]T); ok && items != nil {
		return items
	}
	return []T{}
}

func (s *Store) Selection() filters.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// UpdateSelection applies fn to the current selection under the lock and
// returns the result.
func (s *Store) UpdateSelection(fn func(filters.Selection) filters.Selection) filters.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = fn(s.selection)
	return s.selection
}

// FilteredIncidents applies the current selection to the incidents snapshot.
func (s *Store) FilteredIncidents() []osnit.Incident {
	return filters.Apply(s.Incidents(), s.Selection())
}

// AppendOpLog adds e to the operations log, dropping the oldest entries
// beyond MaxOpLog.
func (s *Store) AppendOpLog(e OpLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opLog = append(s.opLog, e)
	if n := len(s.opLog); n > MaxOpLog {
		s.opLog = append([]OpLogEntry(nil), s.opLog[n-MaxOpLog:]...)
	}
}

// OpLog returns the log, newest first.
func (s *Store) OpLog() []OpLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OpLogEntry, len(s.opLog))
	for i, e := range s.opLog {
		out[len(s.opLog)-1-i] = e
	}
	return out
}

// Close stops the store from accepting snapshots. Reads keep working.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
