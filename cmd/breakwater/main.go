package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/haldorsen/breakwater/internal/api"
	"github.com/haldorsen/breakwater/internal/bridge"
	"github.com/haldorsen/breakwater/internal/config"
	"github.com/haldorsen/breakwater/internal/events"
	"github.com/haldorsen/breakwater/internal/journal"
	"github.com/haldorsen/breakwater/internal/pool"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("breakwater: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"base_pool_size", cfg.BasePoolSize,
		"timeout_ms", cfg.Timeout.Milliseconds(),
	)

	jnl, err := journal.NewSQLiteJournal(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer jnl.Close()

	pools := pool.NewRegistry(cfg.BasePoolSize, logger)
	defer pools.Close()

	broker := events.NewBroker()

	b := bridge.New(pools, logger, bridge.Options{
		Timeout: cfg.Timeout,
		Journal: jnl,
		Events:  broker,
	})

	srv := api.NewServer(cfg.ListenAddr, pools, jnl, b, broker, logger)

	// Demo handlers for load exercises and end-to-end tests. Each executes
	// inside the bulkhead; sleep and fail make the timeout and failure paths
	// reachable from the outside.
	srv.Mount("/demo/echo", demoEcho())
	srv.Mount("/demo/sleep", demoSleep())
	srv.Mount("/demo/fail", demoFail())

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// demoHandler routes demo traffic to its own pool so it cannot starve the
// default one.
type demoHandler struct {
	http.HandlerFunc
}

func (demoHandler) PoolKey(*http.Request) string { return "demo" }

func demoEcho() http.Handler {
	return demoHandler{func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	}}
}

func demoSleep() http.Handler {
	return demoHandler{func(w http.ResponseWriter, r *http.Request) {
		ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
		if err != nil || ms < 0 {
			ms = 100
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("slept " + strconv.Itoa(ms) + "ms\n"))
	}}
}

func demoFail() http.Handler {
	return demoHandler{func(w http.ResponseWriter, r *http.Request) {
		panic("demo failure")
	}}
}
