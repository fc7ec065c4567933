// Package worker owns the long-running consumer pool that drains the
// job queue, executes jobs through the sandbox, retries on transient
// failure, and unconditionally cleans up per-job sandbox state.
package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

// Queue is the subset of the queue client a consumer needs.
type Queue interface {
	PopBlocking(ctx context.Context, queue string, timeout time.Duration) (*job.Job, bool, error)
}

// Executor runs a job through the sandbox and persists its result.
type Executor interface {
	Execute(ctx context.Context, j *job.Job) error
	CleanupBox(ctx context.Context, boxID int) error
}

// Notifier is told about jobs that reached a terminal verdict. It must
// not block for long and must never fail the job; the record is
// already persisted by the time it is called.
type Notifier interface {
	JobFinished(ctx context.Context, j *job.Job)
}

// Config configures the pool.
type Config struct {
	// Concurrency is the number of long-running consumers (target
	// ~2x CPU count).
	Concurrency int

	// QueueName is the FIFO queue consumers pop from.
	QueueName string

	// PopTimeout bounds each blocking pop so cancellation stays
	// responsive.
	PopTimeout time.Duration

	// MaxAttempts bounds retries of a single job.
	MaxAttempts int

	// QueueErrorBackoff is how long a consumer sleeps after a queue
	// error before retrying the pop.
	QueueErrorBackoff time.Duration
}

// DefaultConfig returns the standard constants.
func DefaultConfig(concurrency int) Config {
	return Config{
		Concurrency:       concurrency,
		QueueName:         "jobs",
		PopTimeout:        1 * time.Second,
		MaxAttempts:       3,
		QueueErrorBackoff: 1 * time.Second,
	}
}

// Pool owns N independent long-running consumers.
type Pool struct {
	cfg      Config
	queue    Queue
	executor Executor
	notifier Notifier
}

// New creates a worker pool.
func New(cfg Config, queue Queue, executor Executor) *Pool {
	return &Pool{cfg: cfg, queue: queue, executor: executor}
}

// WithNotifier attaches an optional completion notifier and returns
// the pool for chaining.
func (p *Pool) WithNotifier(n Notifier) *Pool {
	p.notifier = n
	return p
}

// Start spawns Concurrency consumer goroutines and blocks until ctx is
// cancelled and all consumers have observed it.
func (p *Pool) Start(ctx context.Context) {
	done := make(chan struct{}, p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		go func(id int) {
			p.consume(ctx, id)
			done <- struct{}{}
		}(i)
	}

	for i := 0; i < p.cfg.Concurrency; i++ {
		<-done
	}
}

// consume is a single long-running worker: blocking pop, bounded-retry
// execute, unconditional cleanup.
func (p *Pool) consume(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		j, found, err := p.queue.PopBlocking(ctx, p.cfg.QueueName, p.cfg.PopTimeout)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			log.Printf("worker[%d]: queue error, backing off: %v", id, err)
			sleepOrDone(ctx, p.cfg.QueueErrorBackoff)
			continue
		}
		if !found {
			continue
		}

		p.runWithRetry(ctx, id, j)
	}
}

// runWithRetry drives a single job through up to MaxAttempts execute
// calls. CleanupBox runs unconditionally between every attempt and
// after terminal success or final failure.
func (p *Pool) runWithRetry(ctx context.Context, workerID int, j *job.Job) {
	boxID := j.BoxID()

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		err := p.executor.Execute(ctx, j)

		if cerr := p.executor.CleanupBox(ctx, boxID); cerr != nil {
			log.Printf("worker[%d]: cleanup of box %d failed (ignored): %v", workerID, boxID, cerr)
		}

		if err == nil {
			// A non-retried terminal verdict: CompilationError or a
			// classified program outcome. Transient sandbox failures
			// persist InternalError but come back as an error, so they
			// take the retry path below.
			if p.notifier != nil {
				p.notifier.JobFinished(ctx, j)
			}
			return
		}

		log.Printf("worker[%d]: job %d attempt %d/%d failed: %v", workerID, j.ID, attempt, p.cfg.MaxAttempts, err)
		if attempt == p.cfg.MaxAttempts {
			log.Printf("worker[%d]: job %d failed after %d attempts, dropping", workerID, j.ID, p.cfg.MaxAttempts)
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
