package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/haldorsen/breakwater/internal/events"
	"github.com/haldorsen/breakwater/internal/journal"
	"github.com/haldorsen/breakwater/internal/model"
	"github.com/haldorsen/breakwater/internal/pool"
)

const (
	// DefaultTimeout is the outer timeout T armed on the caller side.
	DefaultTimeout = 50 * time.Second
	// DefaultBackstopDelay is D: the inner timeout fires at T+D, strictly
	// after the outer one, so under normal conditions the cheap 504 path wins
	// and the backstop only catches pathological pool behavior.
	DefaultBackstopDelay = 10 * time.Second
)

// PoolKeyer is the optional capability a wrapped handler implements to route
// its requests to a dedicated pool instead of the shared default one.
type PoolKeyer interface {
	PoolKey(*http.Request) string
}

// Options configure a Bridge. The zero value gets production defaults.
type Options struct {
	// Timeout is the outer timeout T. Defaults to DefaultTimeout.
	Timeout time.Duration
	// BackstopDelay is D; the inner timer fires at Timeout+BackstopDelay.
	// Defaults to DefaultBackstopDelay.
	BackstopDelay time.Duration
	// Hooks are optional lifecycle callbacks; see Hooks.
	Hooks Hooks
	// Journal, when set, receives one record per finalized dispatch,
	// written off the request path.
	Journal journal.Recorder
	// Events, when set, receives one event per finalized dispatch.
	Events *events.Broker
}

// Bridge dispatches requests to bounded pools and finalizes each exactly once.
type Bridge struct {
	pools  *pool.Registry
	logger *slog.Logger
	opts   Options
}

// New creates a Bridge over the given pool registry.
func New(pools *pool.Registry, logger *slog.Logger, opts Options) *Bridge {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BackstopDelay <= 0 {
		opts.BackstopDelay = DefaultBackstopDelay
	}
	return &Bridge{
		pools:  pools,
		logger: logger,
		opts:   opts,
	}
}

// Wrap returns a handler that executes h through the bridge.
func (b *Bridge) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.Dispatch(w, r, h)
	})
}

// flight is the per-request state shared by the racing completion sources.
type flight struct {
	id    string
	key   string
	start time.Time
	gate  *gate
	rw    *responseWriter
	body  *guardedBody
}

// Dispatch submits one work item for r to the pool selected by h and parks
// the transport goroutine until the completion gate closes. The worker
// outcome, the outer timer, the inner backstop, and synchronous saturation
// race to finalize; exactly one wins, and the caller always receives exactly
// one terminal response.
//
// Firing a timeout does not cancel the work item. Ghost executions keep a
// live context (detached from the transport) and run to completion against
// an inert response; their outcome is discarded by the gate. Pool sizing has
// to absorb that overhead.
func (b *Bridge) Dispatch(w http.ResponseWriter, r *http.Request, h http.Handler) {
	key := b.poolKeyFor(h, r)
	p := b.pools.Pool(key)

	body := r.Body
	if body == nil {
		body = http.NoBody
	}

	f := &flight{
		id:    model.NewID(),
		key:   key,
		start: time.Now().UTC(),
		gate:  newGate(),
		rw:    newResponseWriter(w),
		body:  newGuardedBody(body),
	}

	b.logger.Debug("dispatching", "dispatch_id", f.id, "pool", key, "path", r.URL.Path)

	wr := r.WithContext(context.WithoutCancel(r.Context()))
	wr.Body = f.body

	outer := time.AfterFunc(b.opts.Timeout, func() {
		b.finish(f, model.OutcomeTimeout, http.StatusGatewayTimeout, "bulkhead timeout")
	})
	defer outer.Stop()

	inner := time.AfterFunc(b.opts.Timeout+b.opts.BackstopDelay, func() {
		b.finish(f, model.OutcomeTimeout, http.StatusGatewayTimeout, "execution backstop timeout")
	})
	defer inner.Stop()

	if err := p.Submit(b.workItem(f, wr, h)); err != nil {
		// Queue at rejection threshold: the handler is never invoked.
		b.finish(f, model.OutcomeSaturated, http.StatusServiceUnavailable, "bulkhead saturated")
	} else {
		runIsolated(b.logger, "after-submit", b.opts.Hooks.AfterSubmit, wr)
	}

	<-f.gate.Done()
}

// workItem builds the task executed on a pool worker: isolated pre-hook,
// handler, guaranteed-run isolated post-hook, then outcome reporting. The
// deferred recover is registered first so the post-hook runs before it and a
// handler panic is never suppressed by a panicking post-hook.
func (b *Bridge) workItem(f *flight, r *http.Request, h http.Handler) pool.Task {
	return func() {
		defer func() {
			if rec := recover(); rec != nil {
				b.logger.Warn("handler panic",
					"dispatch_id", f.id, "pool", f.key, "panic", rec)
				b.finish(f, model.OutcomeFailure, http.StatusInternalServerError, "handler failure")
			}
		}()
		defer runIsolated(b.logger, "after-execute", b.opts.Hooks.AfterExecute, r)

		runIsolated(b.logger, "before-execute", b.opts.Hooks.BeforeExecute, r)
		h.ServeHTTP(f.rw, r)
		b.finish(f, model.OutcomeSuccess, 0, "")
	}
}

// finish reports an outcome to the completion gate. The winner performs the
// single user-visible finalization: write the terminal status (success passes
// the handler's response through untouched), turn the request inert, then
// release the parked transport goroutine. Losers are discarded.
func (b *Bridge) finish(f *flight, outcome string, status int, message string) {
	won := f.gate.tryFinalize(outcome, func() {
		if outcome != model.OutcomeSuccess {
			f.rw.sendError(status, message)
		}
		f.rw.finalize()
		f.body.finalize()
	})
	if !won {
		b.logger.Debug("late outcome discarded",
			"dispatch_id", f.id, "pool", f.key, "outcome", outcome)
		return
	}

	duration := time.Since(f.start)
	dispatchesTotal.WithLabelValues(f.key, outcome).Inc()
	dispatchDuration.WithLabelValues(f.key).Observe(duration.Seconds())

	switch outcome {
	case model.OutcomeFailure:
		b.logger.Warn("dispatch failed",
			"dispatch_id", f.id, "pool", f.key, "reason", message)
	case model.OutcomeTimeout, model.OutcomeSaturated:
		// Expected under load, not an error.
		b.logger.Debug("dispatch "+outcome,
			"dispatch_id", f.id, "pool", f.key, "reason", message)
	}

	record := model.Dispatch{
		ID:         f.id,
		PoolKey:    f.key,
		Outcome:    outcome,
		Status:     f.rw.Status(),
		DurationMS: duration.Milliseconds(),
		CreatedAt:  f.start,
	}

	if b.opts.Events != nil {
		b.opts.Events.Publish(record)
	}
	if b.opts.Journal != nil {
		// Fire and forget: the journal is observability, not correctness.
		go func() {
			if err := b.opts.Journal.RecordDispatch(context.Background(), &record); err != nil {
				b.logger.Error("record dispatch", "dispatch_id", f.id, "error", err)
			}
		}()
	}
}

// poolKeyFor resolves the pool key for a request: the handler's own routing
// choice when it implements PoolKeyer, the shared default pool otherwise.
func (b *Bridge) poolKeyFor(h http.Handler, r *http.Request) string {
	if k, ok := h.(PoolKeyer); ok {
		if key := k.PoolKey(r); key != "" {
			return key
		}
	}
	return pool.DefaultKey
}
