// Package throttle spaces outbound requests in time.
//
// # Gate
//
// [Gate] guarantees that no two acquisitions proceed less than the
// configured interval apart:
//
//	g, err := throttle.NewGate(250 * time.Millisecond)
//	if err := g.Acquire(ctx); err != nil { ... }
//
// A gate built with a zero interval is disabled: Acquire returns
// immediately and never takes the lock.
//
// # Bucket
//
// [Bucket] is a token bucket from [golang.org/x/time/rate] for APIs whose
// limits accumulate unused allowance.
//
// # Transport
//
// Either limiter can wrap an [http.RoundTripper] with [NewRoundTripper].
package throttle
