// Package workerpool provides a bounded worker pool for concurrent batch
// processing with per-job retries.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of work
type Job struct {
	ID      string
	Payload interface{}
}

// Outcome is the result of processing one job
type Outcome struct {
	JobID    string
	Err      error
	Attempts int
}

// HandlerFunc processes one job. A returned error triggers a retry up to the
// configured maximum.
type HandlerFunc func(ctx context.Context, job *Job) error

// Config holds pool configuration
type Config struct {
	// Workers is the number of concurrent workers
	Workers int
	// QueueSize bounds the job queue
	QueueSize int
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// RetryDelay is the delay between attempts
	RetryDelay time.Duration
	// ShutdownTimeout bounds how long Stop waits for in-flight jobs
	ShutdownTimeout time.Duration
}

// DefaultConfig returns defaults sized for the batch validation pipeline,
// which is bounded by database round trips rather than CPU.
func DefaultConfig() Config {
	return Config{
		Workers:         16,
		QueueSize:       4096,
		MaxRetries:      2,
		RetryDelay:      250 * time.Millisecond,
		ShutdownTimeout: 30 * time.Second,
	}
}

// ErrQueueFull is returned by Submit when the queue is at capacity.
var ErrQueueFull = errors.New("workerpool: queue full")

// ErrStopped is returned when submitting to a stopped pool.
var ErrStopped = errors.New("workerpool: stopped")

// Pool runs jobs on a fixed set of workers
type Pool struct {
	config  Config
	handler HandlerFunc
	logger  *zap.Logger

	jobs     chan *Job
	outcomes chan *Outcome
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closed so no submitter can send on jobs after Stop closes it.
	mu     sync.RWMutex
	closed bool

	submitted int64
	completed int64
	failed    int64
	retried   int64
}

// New creates a pool. The handler is required.
func New(cfg Config, handler HandlerFunc, logger *zap.Logger) (*Pool, error) {
	if handler == nil {
		return nil, errors.New("workerpool: handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config:   cfg,
		handler:  handler,
		logger:   logger,
		jobs:     make(chan *Job, cfg.QueueSize),
		outcomes: make(chan *Outcome, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.config.Workers),
		zap.Int("queue_size", p.config.QueueSize))
}

// Submit enqueues a job without blocking
func (p *Pool) Submit(job *Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}

	select {
	case p.jobs <- job:
		atomic.AddInt64(&p.submitted, 1)
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitCtx enqueues a job, blocking until there is room or ctx is done
func (p *Pool) SubmitCtx(ctx context.Context, job *Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}

	select {
	case <-p.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		atomic.AddInt64(&p.submitted, 1)
		return nil
	}
}

// Outcomes returns the outcome channel. It is closed by Stop.
func (p *Pool) Outcomes() <-chan *Outcome {
	return p.outcomes
}

// Stop drains the queue and shuts the pool down. Canceling before taking the
// write lock unblocks any SubmitCtx waiting on a full queue, so the jobs
// channel only closes once no submitter can reach it.
func (p *Pool) Stop() error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	p.mu.Lock()
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
	case <-time.After(p.config.ShutdownTimeout):
		p.logger.Warn("worker pool shutdown timed out")
	}

	close(p.outcomes)
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		outcome := p.run(job)
		if outcome.Err != nil {
			atomic.AddInt64(&p.failed, 1)
			p.logger.Error("job failed",
				zap.String("job_id", job.ID),
				zap.Int("worker_id", id),
				zap.Int("attempts", outcome.Attempts),
				zap.Error(outcome.Err))
		} else {
			atomic.AddInt64(&p.completed, 1)
		}

		select {
		case p.outcomes <- outcome:
		default:
			// Nobody is draining outcomes; drop rather than stall workers.
		}
	}
}

func (p *Pool) run(job *Job) *Outcome {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		select {
		case <-p.ctx.Done():
			if lastErr == nil {
				lastErr = p.ctx.Err()
			}
			return &Outcome{JobID: job.ID, Err: lastErr, Attempts: attempts}
		default:
		}

		attempts++
		if err := p.handler(p.ctx, job); err != nil {
			lastErr = err
			if attempt < p.config.MaxRetries {
				atomic.AddInt64(&p.retried, 1)
				select {
				case <-p.ctx.Done():
				case <-time.After(p.config.RetryDelay):
				}
			}
			continue
		}
		return &Outcome{JobID: job.ID, Attempts: attempts}
	}

	return &Outcome{JobID: job.ID, Err: lastErr, Attempts: attempts}
}

// Stats holds pool counters
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Retried   int64
}

// Stats returns a snapshot of the pool counters
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: atomic.LoadInt64(&p.submitted),
		Completed: atomic.LoadInt64(&p.completed),
		Failed:    atomic.LoadInt64(&p.failed),
		Retried:   atomic.LoadInt64(&p.retried),
	}
}
