package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// Job is one unit of work, typically a single outbound send.
type Job func(ctx context.Context) error

// Pool fans jobs out over a fixed number of workers. Campaign runs submit
// one job per recipient and then Wait for the batch to drain.
type Pool struct {
	jobs       chan Job
	maxWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	errs       []error
	logger     arbor.ILogger
}

// NewPool creates a pool with the given concurrency. Non-positive values
// fall back to 4 workers, which is gentle on channel APIs.
func NewPool(maxWorkers int, logger arbor.ILogger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:       make(chan Job, maxWorkers*2),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.logger.Debug().Int("max_workers", p.maxWorkers).Msg("Starting worker pool")
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a job. Fails once the pool is shutting down.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Wait closes the queue and blocks until every queued job has finished.
// The pool cannot accept further jobs after Wait.
func (p *Pool) Wait() {
	close(p.jobs)
	p.wg.Wait()
}

// Shutdown cancels in-flight jobs and waits for workers to exit.
func (p *Pool) Shutdown() {
	p.cancel()
	p.Wait()
}

// Errors returns the errors collected from failed jobs.
func (p *Pool) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errs
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := job(p.ctx); err != nil {
				p.mu.Lock()
				p.errs = append(p.errs, err)
				p.mu.Unlock()
				p.logger.Warn().Err(err).Int("worker_id", id).Msg("Job failed")
			}
		case <-p.ctx.Done():
			return
		}
	}
}
