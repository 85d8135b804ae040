package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enerscope/enerscope/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	done chan struct{}
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.done != nil {
		j.done <- struct{}{}
	}
	return j.err
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	job := &countingJob{name: "test", done: make(chan struct{}, 3)}
	for i := 0; i < 3; i++ {
		require.True(t, pool.TrySubmit(job))
	}

	for i := 0; i < 3; i++ {
		select {
		case <-job.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run in time")
		}
	}
	assert.Equal(t, int64(3), job.runs.Load())
}

func TestPool_FailingJobDoesNotStopWorkers(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	failing := &countingJob{name: "failing", done: make(chan struct{}, 1), err: assert.AnError}
	require.True(t, pool.TrySubmit(failing))
	<-failing.done

	next := &countingJob{name: "next", done: make(chan struct{}, 1)}
	require.True(t, pool.TrySubmit(next))

	select {
	case <-next.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped processing after a failed job")
	}
}

func TestPool_TrySubmitRejectsWhenQueueFull(t *testing.T) {
	// Pool never started: jobs pile up in the queue.
	pool := worker.NewPool(1, 2)

	job := &countingJob{name: "queued"}
	assert.True(t, pool.TrySubmit(job))
	assert.True(t, pool.TrySubmit(job))
	assert.False(t, pool.TrySubmit(job), "third submit must be rejected without blocking")
}

func TestPool_StopWaitsForWorkers(t *testing.T) {
	pool := worker.NewPool(2, 4)
	pool.Start(context.Background())

	job := &countingJob{name: "test", done: make(chan struct{}, 1)}
	require.True(t, pool.TrySubmit(job))
	<-job.done

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPool_DefaultsApplied(t *testing.T) {
	pool := worker.NewPool(0, 0)
	pool.Start(context.Background())
	defer pool.Stop()

	job := &countingJob{name: "test", done: make(chan struct{}, 1)}
	require.True(t, pool.TrySubmit(job))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("defaulted pool did not run the job")
	}
}
