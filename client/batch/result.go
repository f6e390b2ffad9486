package batch

import "context"

// Result represents an in-flight or completed fetch.
type Result struct {
	done   chan struct{}
	body   []byte
	err    error
	cancel context.CancelFunc
	queue  *Queue
}

// Done returns a channel that is closed when the fetch completes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Body blocks until the fetch completes and returns its outcome.
func (r *Result) Body() ([]byte, error) {
	<-r.done
	return r.body, r.err
}

// Err blocks until the fetch completes and returns its error.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Wait blocks until all fetches in the queue complete.
func (r *Result) Wait() error {
	return r.queue.Wait()
}

// Cancel cancels this fetch's context. A fetch still waiting on the
// throttle stops waiting; its reserved slot is still consumed.
func (r *Result) Cancel() {
	r.cancel()
}
