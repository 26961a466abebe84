// Package journal persists one record per bridged dispatch for after-the-fact
// inspection. Writes happen off the request path; the journal is observability
// only and never part of request-path correctness.
package journal

import (
	"context"
	"errors"

	"github.com/haldorsen/breakwater/internal/model"
)

// ErrNotFound is returned when a dispatch record is not found.
var ErrNotFound = errors.New("dispatch not found")

// DispatchStats holds aggregate dispatch statistics.
type DispatchStats struct {
	Total          int            `json:"total"`
	CountByOutcome map[string]int `json:"count_by_outcome"`
	CountByPool    map[string]int `json:"count_by_pool"`
	AvgDurationMS  float64        `json:"avg_duration_ms"`
}

// Recorder is the narrow write-side interface the bridge depends on.
type Recorder interface {
	RecordDispatch(ctx context.Context, d *model.Dispatch) error
}

// Store defines the persistence operations for dispatch records.
type Store interface {
	Recorder
	GetDispatch(ctx context.Context, id string) (*model.Dispatch, error)
	ListDispatches(ctx context.Context, limit, offset int) ([]*model.Dispatch, int, error)
	GetDispatchStats(ctx context.Context) (*DispatchStats, error)
	Close() error
}
