package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultWorkers is the worker count used when Config.Workers is not positive.
const DefaultWorkers = 10

// Config holds pool configuration
type Config struct {
	// Workers is the fixed number of worker goroutines
	Workers int
	// QueueSize bounds the number of waiting tasks (0 = unbounded)
	QueueSize int
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() Config {
	return Config{
		Workers:   DefaultWorkers,
		QueueSize: 0,
	}
}

// Task is a unit of work. ctx is cancelled when the submitting context is
// cancelled, when the handle is cancelled, or when Shutdown stops waiting.
type Task func(ctx context.Context) error

// Stats is a snapshot of pool bookkeeping.
type Stats struct {
	Workers     int
	Queued      int
	Submitted   int64
	Completed   int64
	Interrupted int64
	Panicked    int64
	Rejected    int64
}

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	config Config
	logger zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Handle
	closed bool

	// base is cancelled when Shutdown gives up waiting for in-flight tasks
	base  context.Context
	abort context.CancelFunc

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownErr  error

	submitted   atomic.Int64
	completed   atomic.Int64
	interrupted atomic.Int64
	panicked    atomic.Int64
	rejected    atomic.Int64
}

// New creates a pool and starts its workers.
func New(config Config, logger zerolog.Logger) *Pool {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}

	base, abort := context.WithCancel(context.Background())
	p := &Pool{
		config: config,
		logger: logger,
		base:   base,
		abort:  abort,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.worker(i)
	}

	logger.Debug().
		Int("workers", config.Workers).
		Int("queue_size", config.QueueSize).
		Msg("Worker pool started")

	return p
}

// Submit queues task and returns its handle without waiting for a worker.
// It fails with a *RejectedError once Shutdown has been called or when a
// bounded queue is full.
func (p *Pool) Submit(ctx context.Context, task Task) (*Handle, error) {
	if task == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, p.reject(ReasonShutdown)
	}
	if p.config.QueueSize > 0 && len(p.queue) >= p.config.QueueSize {
		p.mu.Unlock()
		return nil, p.reject(ReasonQueueFull)
	}

	h := newHandle(ctx, p.base, task)
	p.queue = append(p.queue, h)
	p.submitted.Add(1)
	poolQueueDepth.Inc()
	p.cond.Signal()
	p.mu.Unlock()

	return h, nil
}

func (p *Pool) reject(reason string) error {
	p.rejected.Add(1)
	poolRejectionsTotal.WithLabelValues(reason).Inc()
	p.logger.Warn().Str("reason", reason).Msg("Task submission rejected")
	return &RejectedError{Reason: reason}
}

// Shutdown stops accepting tasks, lets queued and running tasks finish and
// waits for all workers to exit. If ctx ends first, remaining tasks have
// their contexts cancelled, Shutdown still waits for the workers, and
// ctx.Err() is returned. Only the first call does any work.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		pending := len(p.queue)
		p.cond.Broadcast()
		p.mu.Unlock()

		p.logger.Debug().Int("pending", pending).Msg("Worker pool shutting down")

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			p.logger.Warn().Err(ctx.Err()).Msg("Shutdown deadline reached, interrupting in-flight tasks")
			p.abort()
			<-done
			p.shutdownErr = ctx.Err()
		}
		p.abort()

		p.logger.Debug().
			Int64("completed", p.completed.Load()).
			Int64("interrupted", p.interrupted.Load()).
			Msg("Worker pool stopped")
	})
	return p.shutdownErr
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := len(p.queue)
	p.mu.Unlock()

	return Stats{
		Workers:     p.config.Workers,
		Queued:      queued,
		Submitted:   p.submitted.Load(),
		Completed:   p.completed.Load(),
		Interrupted: p.interrupted.Load(),
		Panicked:    p.panicked.Load(),
		Rejected:    p.rejected.Load(),
	}
}

// worker takes tasks from the queue until the pool is closed and drained
func (p *Pool) worker(workerID int) {
	defer p.wg.Done()
	tasksRun := 0

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			break
		}
		h := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		poolQueueDepth.Dec()
		p.run(workerID, h)
		tasksRun++
	}

	p.logger.Debug().
		Int("worker_id", workerID).
		Int("tasks_run", tasksRun).
		Msg("Worker stopped")
}

func (p *Pool) run(workerID int, h *Handle) {
	poolBusyWorkers.Inc()
	defer poolBusyWorkers.Dec()

	err := p.execute(h)

	var panicErr *PanicError
	switch {
	case err == nil:
		poolTasksTotal.WithLabelValues("ok").Inc()
	case errors.As(err, &panicErr):
		p.panicked.Add(1)
		poolTasksTotal.WithLabelValues("panicked").Inc()
		p.logger.Error().
			Int("worker_id", workerID).
			Interface("panic", panicErr.Value).
			Bytes("stack", panicErr.Stack).
			Msg("Task panicked")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		h.interrupted = true
		p.interrupted.Add(1)
		poolTasksTotal.WithLabelValues("interrupted").Inc()
		p.logger.Debug().
			Int("worker_id", workerID).
			Err(err).
			Msg("Task interrupted")
	default:
		poolTasksTotal.WithLabelValues("error").Inc()
	}

	p.completed.Add(1)
	h.finish(err)
}

// execute runs the task, converting a panic into a *PanicError
func (p *Pool) execute(h *Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return h.task(h.ctx)
}
