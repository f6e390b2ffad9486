package throttle

import (
	"errors"
	"fmt"
	"net/http"
)

// throttle is an http.RoundTripper that waits on an Acquirer before
// handing the request to the next transport.
type throttle struct {
	acquirer Acquirer
	next     http.RoundTripper
}

// NewRoundTripper returns an http.RoundTripper gated by a. It is meant for
// callers that supply their own *http.Client and want the same spacing.
func NewRoundTripper(a Acquirer, next http.RoundTripper) (http.RoundTripper, error) {
	if a == nil {
		return nil, errors.New("acquirer must not be nil")
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return &throttle{acquirer: a, next: next}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := t.acquirer.Acquire(ctx); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
