package pool

import (
	"log/slog"
	"sort"
	"sync"
)

// DefaultKey selects the shared pool used by work items that do not declare a
// dedicated pool.
const DefaultKey = "default"

// Info pairs a pool key with its resolved configuration.
type Info struct {
	Key    string `json:"key"`
	Config Config `json:"config"`
}

// Registry owns the name→pool mapping. Pools are created lazily on first
// lookup using SizingFor and live for the process lifetime; there is no
// removal or resizing.
type Registry struct {
	mu       sync.Mutex
	baseUnit int
	logger   *slog.Logger
	pools    map[string]*Pool
}

// NewRegistry creates an empty registry sized off baseUnit.
func NewRegistry(baseUnit int, logger *slog.Logger) *Registry {
	return &Registry{
		baseUnit: baseUnit,
		logger:   logger,
		pools:    make(map[string]*Pool),
	}
}

// Pool returns the pool for key, creating it on first use. Repeated calls
// with the same key return the same instance. Creation registers the pool's
// worker gauge exactly once as a side effect.
func (r *Registry) Pool(key string) *Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pools[key]; ok {
		return p
	}

	cfg := SizingFor(key, r.baseUnit)
	p := New(key, cfg, r.logger)
	r.pools[key] = p
	r.logger.Info("created pool",
		"pool", key,
		"workers", cfg.Workers,
		"queue_size", cfg.QueueSize,
		"rejection_threshold", cfg.RejectionThreshold,
	)
	return p
}

// List returns information about all created pools, sorted by key for a
// stable API response.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.pools))
	for key, p := range r.pools {
		infos = append(infos, Info{Key: key, Config: p.Configuration()})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos
}

// Close shuts down every pool. For tests and orderly process exit.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		p.Close()
	}
}
