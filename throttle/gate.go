package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Gate spaces the start of consecutive requests at least interval apart.
//
// The schedule advances by a fixed interval per acquisition. After an idle
// gap the schedule restarts at the current time, so unused slots are not
// banked for later bursts. Use a [Bucket] when credit should accumulate.
type Gate struct {
	interval time.Duration
	clock    Clock
	logFn    func() *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	next time.Time
}

// GateOption configures a [Gate].
type GateOption func(*Gate)

// WithClock replaces time.Now as the gate's time source.
func WithClock(clock Clock) GateOption {
	return func(g *Gate) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithLogger lazily resolves the logger used to report waits. A nil
// return disables logging.
func WithLogger(logFn func() *slog.Logger) GateOption {
	return func(g *Gate) {
		if logFn != nil {
			g.logFn = logFn
		}
	}
}

// NewGate returns a gate enforcing interval between request starts.
// A zero interval yields a disabled gate whose Acquire never blocks.
func NewGate(interval time.Duration, opts ...GateOption) (*Gate, error) {
	if interval < 0 {
		return nil, fmt.Errorf("interval[%s]: %w", interval, ErrNegativeInterval)
	}

	g := &Gate{
		interval: interval,
		clock:    time.Now,
		logFn:    func() *slog.Logger { return nil },
		sleep:    sleep,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Interval returns the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	if g == nil {
		return 0
	}

	return g.interval
}

// Acquire suspends the caller until its reserved start time. The lock
// covers only the schedule update, never the wait itself.
func (g *Gate) Acquire(ctx context.Context) error {
	if g == nil || g.interval <= 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	wait := g.reserve()
	if wait <= 0 {
		return nil
	}

	if logger := g.logFn(); logger != nil {
		logger.Debug("throttle wait", "wait", wait.String(), "interval", g.interval.String())
	}

	if err := g.sleep(ctx, wait); err != nil {
		return fmt.Errorf("%w: %w", ErrWaitCancelled, err)
	}

	return nil
}

// reserve claims the next slot and returns how long the caller must wait for it.
func (g *Gate) reserve() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()

	var wait time.Duration
	if !g.next.After(now) {
		g.next = now
	} else {
		wait = g.next.Sub(now)
	}
	g.next = g.next.Add(g.interval)

	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
