package pool

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrSaturated is returned by Submit when the pool's queue has reached its
// rejection threshold and the task was not enqueued.
var ErrSaturated = errors.New("pool queue at rejection threshold")

// Task is a unit of work executed on a pool worker. Tasks own their
// completion reporting; a panic inside a task is recovered by the worker and
// does not take the worker down.
type Task func()

// Config describes the capacity of one pool. It is derived from the base
// concurrency unit and the pool key, never stored.
type Config struct {
	Workers            int `json:"workers"`
	QueueSize          int `json:"queue_size"`
	RejectionThreshold int `json:"rejection_threshold"`
}

// SizingFor computes the pool configuration for a key from the base unit.
// The default pool absorbs every work item that does not opt into a dedicated
// pool, so it gets double the workers. Queue capacity and rejection threshold
// scale off the same base unit so operators tune one knob.
// RejectionThreshold < QueueSize is not validated here.
func SizingFor(key string, baseUnit int) Config {
	workers := baseUnit
	if key == DefaultKey {
		workers = baseUnit * 2
	}
	return Config{
		Workers:            workers,
		QueueSize:          baseUnit * 4,
		RejectionThreshold: baseUnit * 2,
	}
}

// Pool is a fixed-size worker pool with a bounded queue. Submissions beyond
// the rejection threshold fail synchronously; nothing ever blocks the caller.
type Pool struct {
	name     string
	cfg      Config
	queue    chan Task
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   *slog.Logger
}

// New creates a pool and starts its workers.
func New(name string, cfg Config, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}

	p := &Pool{
		name:   name,
		cfg:    cfg,
		queue:  make(chan Task, cfg.QueueSize),
		quit:   make(chan struct{}),
		logger: logger,
	}

	poolWorkers.WithLabelValues(name).Set(float64(cfg.Workers))
	poolQueueDepth.WithLabelValues(name).Set(0)

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}

	return p
}

// Name returns the pool's registry key.
func (p *Pool) Name() string { return p.name }

// Configuration returns the sizing the pool was created with.
func (p *Pool) Configuration() Config { return p.cfg }

// Submit enqueues a task for execution. It never blocks: when the queue is at
// the rejection threshold (or full), it returns ErrSaturated and the task is
// never run.
func (p *Pool) Submit(task Task) error {
	tasksSubmitted.WithLabelValues(p.name).Inc()

	select {
	case <-p.quit:
		tasksRejected.WithLabelValues(p.name).Inc()
		return ErrSaturated
	default:
	}

	if len(p.queue) >= p.cfg.RejectionThreshold {
		tasksRejected.WithLabelValues(p.name).Inc()
		return ErrSaturated
	}

	select {
	case p.queue <- task:
		poolQueueDepth.WithLabelValues(p.name).Set(float64(len(p.queue)))
		return nil
	default:
		tasksRejected.WithLabelValues(p.name).Inc()
		return ErrSaturated
	}
}

// Close stops the workers after their current task. Queued tasks that have
// not started are dropped. Pools live for the process lifetime in production;
// Close exists for tests and orderly process exit.
func (p *Pool) Close() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.queue:
			poolQueueDepth.WithLabelValues(p.name).Set(float64(len(p.queue)))
			p.run(task)
		case <-p.quit:
			return
		}
	}
}

// run executes one task, containing any panic so the worker survives.
// Task-level outcome reporting (including panics) is the task's own
// responsibility; this recover only protects the pool.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panic escaped its completion path", "pool", p.name, "panic", r)
		}
	}()
	task()
}
