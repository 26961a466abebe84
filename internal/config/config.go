package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr   = ":8080"
	defaultDBPath       = "breakwater.db"
	defaultBasePoolSize = 100
	defaultTimeoutMS    = 50000

	envListenAddr   = "BREAKWATER_LISTEN_ADDR"
	envDBPath       = "BREAKWATER_DB_PATH"
	envLogLevel     = "BREAKWATER_LOG_LEVEL"
	envBasePoolSize = "BREAKWATER_BASE_POOL_SIZE"
	envTimeoutMS    = "BREAKWATER_TIMEOUT_MS"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	LogLevel     slog.Level
	BasePoolSize int
	Timeout      time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:   defaultListenAddr,
		DBPath:       defaultDBPath,
		LogLevel:     slog.LevelInfo,
		BasePoolSize: defaultBasePoolSize,
		Timeout:      defaultTimeoutMS * time.Millisecond,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if n := parsePositiveInt(os.Getenv(envBasePoolSize)); n > 0 {
		cfg.BasePoolSize = n
	}
	if n := parsePositiveInt(os.Getenv(envTimeoutMS)); n > 0 {
		cfg.Timeout = time.Duration(n) * time.Millisecond
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parsePositiveInt returns the parsed value, or 0 when s is empty, malformed,
// or non-positive.
func parsePositiveInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
