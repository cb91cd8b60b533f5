package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type countingJob struct {
	counter *int64
	err     error
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	return &countingResult{err: j.err}
}

func TestPoolRunsEveryJob(t *testing.T) {
	var executed int64
	pool := NewPool(4)
	pool.Start()

	const jobs = 20
	for i := 0; i < jobs; i++ {
		pool.Submit(&countingJob{counter: &executed})
	}

	results := pool.Wait()

	if got := atomic.LoadInt64(&executed); got != jobs {
		t.Errorf("executed %d jobs, want %d", got, jobs)
	}
	if len(results) != jobs {
		t.Errorf("collected %d results, want %d", len(results), jobs)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	var executed int64
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&countingJob{counter: &executed})
	pool.Submit(&countingJob{counter: &executed, err: errors.New("boom")})

	results := pool.Wait()

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoolMinimumOneWorker(t *testing.T) {
	var executed int64
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countingJob{counter: &executed})

	if results := pool.Wait(); len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestPoolShutdownStopsWorkers(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submissions after shutdown are dropped, not deadlocked
	var executed int64
	pool.Submit(&countingJob{counter: &executed})
	if got := atomic.LoadInt64(&executed); got != 0 {
		t.Errorf("executed %d jobs after shutdown, want 0", got)
	}
}
