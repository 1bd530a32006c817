// Package fetch syncs hosting provider entities into the local cache through
// an asynchronous worker pool.
//
// The pool decouples cache writes from the paging API walk so slow storage
// never stalls the HTTP fetch loop.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cutplanco/cutplan/pkg/store"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
// Exactly one of Issue or PullRequest is set.
type Job struct {
	Issue       *store.Issue
	PullRequest *store.PullRequest
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting entities.
	Driver store.Driver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool persists cache entities asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu      sync.Mutex
	failed  int
	written int
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped")
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this after the paging walk has finished enqueuing.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Stats returns the number of entities written and the number of failed writes
// so far. Stable only after Close.
func (p *Pool) Stats() (written, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written, p.failed
}

// worker is the inner worker thread that continuously pulls jobs off the queue.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("fetch worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("fetch worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	var err error
	switch {
	case job.Issue != nil:
		err = p.config.Driver.UpsertIssue(ctx, job.Issue)
	case job.PullRequest != nil:
		err = p.config.Driver.UpsertPullRequest(ctx, job.PullRequest)
	default:
		return
	}

	p.mu.Lock()
	if err != nil {
		p.failed++
	} else {
		p.written++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("async cache write failed", "error", err)
		return
	}

	if job.Issue != nil {
		p.logger.Debug("issue cached", "repo", job.Issue.Repo, "number", job.Issue.Number)
	} else {
		p.logger.Debug("pull request cached", "number", job.PullRequest.Number)
	}
}
