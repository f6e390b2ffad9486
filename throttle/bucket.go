package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Bucket is a token-bucket limiter. Unlike [Gate], idle time refills
// up to burst tokens, so an API that grants accumulated credit can be
// used at full allowance after a quiet period.
type Bucket struct {
	limiter *rate.Limiter
}

// NewBucket returns a Bucket allowing rps requests per second with the given burst.
func NewBucket(rps float64, burst int) (*Bucket, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%g] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}

	return &Bucket{limiter: rate.NewLimiter(rate.Limit(rps), burst)}, nil
}

// Acquire waits for a token.
func (b *Bucket) Acquire(ctx context.Context) error {
	if b == nil || b.limiter == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w: %w", ErrWaitingFailed, ErrWaitCancelled, ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	return nil
}
