// Package batch runs many fetches concurrently through one throttled
// [client.Client].
//
// The client's limiter still spaces the requests; the queue only bounds
// how many goroutines wait on it at once and gathers the results:
//
//	q := batch.NewQueue(c, 4)
//	for _, d := range descriptors {
//		q.Start(ctx, d)
//	}
//	err := q.Wait()
package batch
