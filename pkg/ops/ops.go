// Package ops sends operational triggers to the backend and records them in
// the operations log.
package ops

import (
	"context"
	"time"

	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/polling"
	"github.com/osnit-shield/osnit/pkg/state"
)

type Triggerer interface {
	Trigger(ctx context.Context, op osnit.Operation) (osnit.OperationResult, error)
}

type Refresher interface {
	RefreshOne(ctx context.Context, r osnit.Resource) (polling.Result, error)
}

type Observer interface {
	ObserveOperation(op string, err error)
}

type Runner struct {
	Backend   Triggerer    // required
	Store     *state.Store // optional; nil = no operations log
	Refresher Refresher    // optional; re-reads scheduler status after start/stop
	Metrics   Observer     // optional
	Log       polling.Logger
	Now       func() time.Time
}

// Run sends op and logs the outcome. The returned entry is filled in even
// when err is not nil.
func (r *Runner) Run(ctx context.Context, op osnit.Operation) (state.OpLogEntry, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	res, err := r.Backend.Trigger(ctx, op)
	entry := state.OpLogEntry{Time: now(), Operation: op, Result: res}
	if err != nil {
		entry.Error = err.Error()
		if r.Log != nil {
			r.Log.Warnf("%s failed: %v", op, err)
		}
	} else if r.Log != nil {
		r.Log.Infof("%s done", op)
	}

	if r.Metrics != nil {
		r.Metrics.ObserveOperation(string(op), err)
	}
	if r.Store != nil {
		r.Store.AppendOpLog(entry)
	}

	if err == nil && (op == osnit.OpStartScheduler || op == osnit.OpStopScheduler) && r.Refresher != nil {
		if st, rerr := r.Refresher.RefreshOne(ctx, osnit.ResourceSchedulerStatus); rerr == nil && st.Err != nil && r.Log != nil {
			r.Log.Debugf("Could not re-read scheduler status: %v", st.Err)
		}
	}
	return entry, err
}
