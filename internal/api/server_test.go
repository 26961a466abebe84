package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/haldorsen/breakwater/internal/bridge"
	"github.com/haldorsen/breakwater/internal/events"
	"github.com/haldorsen/breakwater/internal/journal"
	"github.com/haldorsen/breakwater/internal/pool"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	jnl, err := journal.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	t.Cleanup(func() { jnl.Close() })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	pools := pool.NewRegistry(1, logger)
	t.Cleanup(pools.Close)

	broker := events.NewBroker()
	b := bridge.New(pools, logger, bridge.Options{
		Timeout: 2 * time.Second,
		Journal: jnl,
		Events:  broker,
	})

	return NewServer(":0", pools, jnl, b, broker, logger)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPanicRecovery(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/panic")
	if err != nil {
		t.Fatalf("GET /panic: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestMountedHandlerRunsThroughBridge(t *testing.T) {
	srv := newTestServer(t)
	srv.Mount("/work", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("done"))
	}))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/work")
	if err != nil {
		t.Fatalf("GET /work: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	// The dispatch must land on the default pool.
	deadline := time.Now().Add(2 * time.Second)
	for {
		found := false
		for _, info := range srv.pools.List() {
			if info.Key == pool.DefaultKey {
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("default pool was never created")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListPools(t *testing.T) {
	srv := newTestServer(t)
	srv.pools.Pool("payments")

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/pools")
	if err != nil {
		t.Fatalf("GET /v1/pools: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if got := string(body); !strings.Contains(got, "payments") {
		t.Errorf("body %q does not list the payments pool", got)
	}
}
