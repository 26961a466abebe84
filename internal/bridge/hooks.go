package bridge

import (
	"log/slog"
	"net/http"
)

// Hooks are optional callbacks for cross-cutting behavior (metrics, tracing)
// around the wrapped handler. All hooks are best-effort: a panicking hook is
// recovered and logged, and never alters the handler's own outcome. A
// panicking AfterExecute in particular cannot suppress a handler panic
// already in flight.
type Hooks struct {
	// BeforeExecute runs on the worker goroutine before the handler.
	BeforeExecute func(*http.Request)
	// AfterExecute runs on the worker goroutine after the handler, with
	// guaranteed-run semantics: it executes even when the handler panics.
	AfterExecute func(*http.Request)
	// AfterSubmit runs on the caller goroutine once the work item has been
	// accepted by the pool.
	AfterSubmit func(*http.Request)
}

// runIsolated invokes a hook with the never-throw contract made explicit:
// panics stop here.
func runIsolated(logger *slog.Logger, name string, hook func(*http.Request), r *http.Request) {
	if hook == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Info("hook panic isolated", "hook", name, "panic", rec)
		}
	}()
	hook(r)
}
