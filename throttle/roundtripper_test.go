package throttle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRoundTripper_Validation(t *testing.T) {
	if _, err := NewRoundTripper(nil, http.DefaultTransport); err == nil {
		t.Error("exp error for nil acquirer")
	}

	g, err := NewGate(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	rt, err := NewRoundTripper(g, nil)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if rt == nil {
		t.Error("exp non-nil RoundTripper")
	}
}

func TestThrottleRoundTripper_Behavior(t *testing.T) {
	testCases := []struct {
		name          string
		acquirer      func(t *testing.T) Acquirer
		numRequests   int
		reqTimeout    time.Duration
		preCancel     bool
		expectReqErrs int
		minDuration   time.Duration
		maxDuration   time.Duration
	}{
		{
			name: "Gate spaces concurrent requests",
			acquirer: func(t *testing.T) Acquirer {
				g, err := NewGate(20 * time.Millisecond)
				if err != nil {
					t.Fatal(err)
				}
				return g
			},
			numRequests: 5,
			minDuration: 4 * 20 * time.Millisecond,
		},
		{
			name: "Disabled gate is fast",
			acquirer: func(t *testing.T) Acquirer {
				g, err := NewGate(0)
				if err != nil {
					t.Fatal(err)
				}
				return g
			},
			numRequests: 20,
			maxDuration: 200 * time.Millisecond,
		},
		{
			name: "Bucket within burst is fast",
			acquirer: func(t *testing.T) Acquirer {
				b, err := NewBucket(5, 5)
				if err != nil {
					t.Fatal(err)
				}
				return b
			},
			numRequests: 5,
			maxDuration: 100 * time.Millisecond,
		},
		{
			name: "Gate wait exceeds request timeout",
			acquirer: func(t *testing.T) Acquirer {
				g, err := NewGate(100 * time.Millisecond)
				if err != nil {
					t.Fatal(err)
				}
				return g
			},
			numRequests:   3, // first is immediate, the others wait >= 100ms
			reqTimeout:    50 * time.Millisecond,
			expectReqErrs: 2,
		},
		{
			name: "Pre-Cancelled Context Fails Early",
			acquirer: func(t *testing.T) Acquirer {
				g, err := NewGate(10 * time.Millisecond)
				if err != nil {
					t.Fatal(err)
				}
				return g
			},
			numRequests:   1,
			preCancel:     true,
			expectReqErrs: 1,
			maxDuration:   50 * time.Millisecond,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var callCount atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				callCount.Add(1)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			}))
			defer server.Close()

			rt, err := NewRoundTripper(tc.acquirer(t), http.DefaultTransport)
			if err != nil {
				t.Fatal(err)
			}

			client := &http.Client{Transport: rt}

			var wg sync.WaitGroup
			errs := make([]error, tc.numRequests)

			start := time.Now()
			for i := range tc.numRequests {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()

					ctx, cancel := context.WithCancel(t.Context())
					defer cancel()
					if tc.preCancel {
						cancel()
					}
					if tc.reqTimeout > 0 {
						var timeoutCancel context.CancelFunc
						ctx, timeoutCancel = context.WithTimeout(ctx, tc.reqTimeout)
						defer timeoutCancel()
					}

					req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
					if reqErr != nil {
						errs[idx] = fmt.Errorf("failed create req %d: %w", idx, reqErr)
						return
					}

					resp, doErr := client.Do(req)
					errs[idx] = doErr
					if doErr == nil {
						resp.Body.Close()
					}
				}(i)
			}
			wg.Wait()
			duration := time.Since(start)

			var failed int
			for i, err := range errs {
				if err != nil {
					failed++
					t.Logf("Request %d failed with: %v", i, err)
					if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
						t.Errorf("exp context error, got: %v", err)
					}
				}
			}

			if failed != tc.expectReqErrs {
				t.Errorf("expected %d failed requests; got %d", tc.expectReqErrs, failed)
			}

			if got, exp := callCount.Load(), int32(tc.numRequests-failed); got != exp {
				t.Errorf("unexpected number of calls reached the server; exp %d, got %d", exp, got)
			}

			if tc.minDuration > 0 && duration < tc.minDuration-jitter {
				t.Errorf("execution should be slowed down by throttle (>= %v), but took %v", tc.minDuration, duration)
			}
			if tc.maxDuration > 0 && duration > tc.maxDuration {
				t.Errorf("should be fast (< %v); but took %v", tc.maxDuration, duration)
			}
		})
	}
}
