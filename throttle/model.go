package throttle

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMustNotBeZero    = errors.New("must be greater than zero")
	ErrNegativeInterval = errors.New("interval must not be negative")
	ErrWaitingFailed    = errors.New("limiter waiting failed")
	ErrWaitCancelled    = errors.New("throttle wait cancelled")
	ErrContextEnded     = errors.New("throttle context ended")
)

// Acquirer blocks until the caller may send its next request.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Clock reports the current time.
type Clock func() time.Time

var (
	_ Acquirer = (*Gate)(nil)
	_ Acquirer = (*Bucket)(nil)
)
