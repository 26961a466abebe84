package bridge

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseWriterPassthroughWhilePending(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.Header().Set("X-Thing", "yes")
	rw.WriteHeader(http.StatusCreated)
	if _, err := rw.Write([]byte("body")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("code = %d, want 201", rec.Code)
	}
	if rec.Body.String() != "body" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "body")
	}
	if rec.Header().Get("X-Thing") != "yes" {
		t.Error("header not passed through")
	}
	if rw.Status() != http.StatusCreated {
		t.Errorf("Status() = %d, want 201", rw.Status())
	}
}

func TestResponseWriterInertAfterFinalize(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.sendError(http.StatusGatewayTimeout, "bulkhead timeout")
	rw.finalize()

	// A ghost execution keeps writing; nothing may reach the transport.
	rw.Header().Set("X-Late", "yes")
	rw.WriteHeader(http.StatusOK)
	n, err := rw.Write([]byte("late body"))
	if err != nil || n != len("late body") {
		t.Errorf("late Write = (%d, %v), want full length and nil error", n, err)
	}

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("code = %d, want 504", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "late body") {
		t.Errorf("late write reached the transport: %q", rec.Body.String())
	}
	if rec.Header().Get("X-Late") != "" {
		t.Error("late header mutation reached the transport")
	}
}

func TestSendErrorSkippedAfterHandlerCommitted(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusOK)
	rw.sendError(http.StatusGatewayTimeout, "too late")

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want the handler's 200 to stand", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "too late") {
		t.Error("error body written over a committed response")
	}
}

func TestGuardedBodyEOFAfterFinalize(t *testing.T) {
	gb := newGuardedBody(io.NopCloser(strings.NewReader("payload")))

	buf := make([]byte, 3)
	if n, err := gb.Read(buf); err != nil || n != 3 {
		t.Fatalf("Read before finalize = (%d, %v)", n, err)
	}

	gb.finalize()

	if n, err := gb.Read(buf); n != 0 || err != io.EOF {
		t.Errorf("Read after finalize = (%d, %v), want (0, EOF)", n, err)
	}
	if err := gb.Close(); err != nil {
		t.Errorf("Close after finalize: %v", err)
	}
}
