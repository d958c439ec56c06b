package workerpool

import (
	"sync"
)

// Job is a unit of work submitted to a Pool.
type Job func() error

// Pool runs jobs on a fixed number of worker goroutines.
// The first job error is retained, remaining queued jobs are dropped,
// and the error is returned from Wait.
type Pool struct {
	jobs chan Job
	stop chan struct{}

	mu      sync.Mutex
	pending sync.WaitGroup
	err     error
	stopped bool
}

// New creates a Pool with n workers. n must be >= 1.
func New(n int) *Pool {
	p := &Pool{
		jobs: make(chan Job),
		stop: make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Add enqueues jobs without blocking the caller.
func (p *Pool) Add(jobs []Job) {
	p.pending.Add(len(jobs))
	go func() {
		for _, job := range jobs {
			select {
			case p.jobs <- job:
			case <-p.stop:
				p.pending.Done()
			}
		}
	}()
}

// AddBlocking enqueues jobs, blocking until every job has been handed
// to a worker.
func (p *Pool) AddBlocking(jobs []Job) {
	p.pending.Add(len(jobs))
	for _, job := range jobs {
		select {
		case p.jobs <- job:
		case <-p.stop:
			p.pending.Done()
		}
	}
}

// Wait blocks until all added jobs have completed or been dropped, and
// returns the first job error, if any. The pool remains usable after
// Wait returns.
func (p *Pool) Wait() error {
	p.pending.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Stop shuts the pool down. Queued jobs are dropped, running jobs
// finish. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.stopped = true
		close(p.stop)
	}
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			p.mu.Lock()
			failed := p.err != nil
			p.mu.Unlock()

			if !failed {
				if err := job(); err != nil {
					p.mu.Lock()
					if p.err == nil {
						p.err = err
					}
					p.mu.Unlock()
				}
			}
			p.pending.Done()
		}
	}
}
