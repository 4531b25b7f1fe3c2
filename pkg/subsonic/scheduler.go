package subsonic

import (
	"context"
	"sync"
)

// Priority orders jobs in the request scheduler. Health-check and
// re-authentication calls preempt bulk catalog fetches.
type Priority int

const (
	// PriorityHealth is for health-check and authentication calls.
	PriorityHealth Priority = iota
	// PriorityBulk is for catalog enumeration and media calls.
	PriorityBulk
)

// job is one unit of work queued for the worker pool.
type job struct {
	ctx  context.Context
	run  func(ctx context.Context)
	done chan struct{}
}

// scheduler is a bounded-concurrency dispatcher. A fixed pool of workers
// drains two queues; the high-priority queue is always drained first, so
// health and auth calls are never stuck behind bulk enumeration traffic.
type scheduler struct {
	high chan *job
	low  chan *job

	quit chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// newScheduler starts a pool of the given number of workers.
func newScheduler(workers int) *scheduler {
	s := &scheduler{
		high: make(chan *job, workers),
		low:  make(chan *job, workers),
		quit: make(chan struct{}),
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// worker drains the queues until the scheduler shuts down. The
// non-blocking first select gives high-priority jobs strict preference
// whenever one is waiting.
func (s *scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case j := <-s.high:
			s.execute(j)
			continue
		default:
		}

		select {
		case j := <-s.high:
			s.execute(j)
		case j := <-s.low:
			s.execute(j)
		case <-s.quit:
			return
		}
	}
}

// execute runs a job unless its context was cancelled while queued.
func (s *scheduler) execute(j *job) {
	if j.ctx.Err() == nil {
		j.run(j.ctx)
	}
	close(j.done)
}

// do queues fn at the given priority and blocks until it has run.
// Submission blocks when the pool is saturated, which bounds how much
// work a single client can have in flight. Returns the context error if
// ctx is cancelled before the job completes, ErrClosed if the scheduler
// has shut down.
func (s *scheduler) do(ctx context.Context, pri Priority, fn func(ctx context.Context)) error {
	j := &job{ctx: ctx, run: fn, done: make(chan struct{})}

	queue := s.low
	if pri == PriorityHealth {
		queue = s.high
	}

	select {
	case queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	}

	select {
	case <-j.done:
		return ctx.Err()
	case <-ctx.Done():
		// Still queued behind a saturated pool; the worker will see the
		// cancelled context and skip the job.
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	}
}

// close shuts down the pool and waits for in-flight jobs to finish.
func (s *scheduler) close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}
