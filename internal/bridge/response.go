package bridge

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// responseWriter guards the transport's ResponseWriter against the loser of
// the finalization race. While the request is pending, handler writes pass
// straight through; once finalized the writer turns inert and every later
// write is discarded. The mutex serializes the worker goroutine's writes
// against the timer goroutine's terminal write.
type responseWriter struct {
	mu          sync.Mutex
	w           http.ResponseWriter
	inert       bool
	wroteHeader bool
	status      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w: w}
}

func (rw *responseWriter) Header() http.Header {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.inert {
		// Detached map: late header mutation must not reach the transport.
		return make(http.Header)
	}
	return rw.w.Header()
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.inert || rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.status = status
	rw.w.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.inert {
		// Pretend the write succeeded so ghost executions run to completion
		// without spurious errors.
		return len(b), nil
	}
	if !rw.wroteHeader {
		rw.wroteHeader = true
		rw.status = http.StatusOK
	}
	return rw.w.Write(b)
}

// Flush passes through while pending so streaming handlers keep working.
func (rw *responseWriter) Flush() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.inert {
		return
	}
	if f, ok := rw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// sendError writes the terminal JSON error for a non-success outcome. It is
// skipped when the handler already committed a header: the wire cannot be
// rewound, so the partial response stands and only the journal records the
// outcome.
func (rw *responseWriter) sendError(status int, message string) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.inert || rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.status = status
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(status)
	_ = json.NewEncoder(rw.w).Encode(map[string]string{"error": message})
}

// finalize turns the writer inert. Idempotent.
func (rw *responseWriter) finalize() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.inert = true
}

// Status reports what actually went on the wire, defaulting to 200 when the
// handler finished without writing a header.
func (rw *responseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if !rw.wroteHeader {
		return http.StatusOK
	}
	return rw.status
}

// guardedBody shields the request body the same way: once the request is
// finalized the transport may recycle the underlying connection, so a ghost
// execution that keeps reading sees EOF instead of racing it.
type guardedBody struct {
	mu    sync.Mutex
	rc    io.ReadCloser
	inert bool
}

func newGuardedBody(rc io.ReadCloser) *guardedBody {
	return &guardedBody{rc: rc}
}

func (b *guardedBody) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inert {
		return 0, io.EOF
	}
	return b.rc.Read(p)
}

func (b *guardedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inert {
		return nil
	}
	return b.rc.Close()
}

func (b *guardedBody) finalize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inert = true
}
