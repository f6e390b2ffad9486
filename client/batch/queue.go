package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/adamwoolhether/pacer/client"
	"golang.org/x/sync/semaphore"
)

// ErrShutdown is returned for fetches started after [Queue.Shutdown].
var ErrShutdown = errors.New("batch queue shut down")

// Fetcher is satisfied by *client.Client.
type Fetcher interface {
	FetchData(ctx context.Context, d client.Descriptor, opts ...client.FetchOption) ([]byte, error)
}

// Queue manages a batch of concurrent fetches.
type Queue struct {
	f        Fetcher
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	mu       sync.Mutex
	errs     []error
	shutdown atomic.Bool
}

// NewQueue creates a Queue issuing fetches through f.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(f Fetcher, maxConcurrent int) *Queue {
	q := &Queue{f: f}
	if maxConcurrent > 0 {
		q.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return q
}

// Start launches the fetch described by d and returns a Result tracking it.
func (q *Queue) Start(ctx context.Context, d client.Descriptor, opts ...client.FetchOption) *Result {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result{
		done:   make(chan struct{}),
		cancel: cancel,
		queue:  q,
	}

	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(r.done)
			q.wg.Done()
		}()

		if q.sem != nil {
			if err := q.sem.Acquire(ctx, 1); err != nil {
				r.err = fmt.Errorf("waiting for slot: %w", err)
				q.recordErr(r.err)
				return
			}
			defer q.sem.Release(1)
		}

		if q.shutdown.Load() {
			r.err = ErrShutdown
			q.recordErr(r.err)
			return
		}

		r.body, r.err = q.f.FetchData(ctx, d, opts...)
		if r.err != nil {
			q.recordErr(fmt.Errorf("%s %s: %w", d.Method, d.URL, r.err))
		}
	}()

	return r
}

// Wait blocks until every fetch in the queue completes.
// Returns all errors joined via errors.Join.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown prevents fetches that have not started yet from running.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}

// FetchAll fetches every descriptor with at most maxConcurrent in flight.
// Bodies are returned in the order of ds; a failed fetch leaves a nil entry.
func FetchAll(ctx context.Context, f Fetcher, ds []client.Descriptor, maxConcurrent int, opts ...client.FetchOption) ([][]byte, error) {
	q := NewQueue(f, maxConcurrent)

	results := make([]*Result, len(ds))
	for i, d := range ds {
		results[i] = q.Start(ctx, d, opts...)
	}

	err := q.Wait()

	bodies := make([][]byte, len(ds))
	for i, r := range results {
		bodies[i] = r.body
	}

	return bodies, err
}
