// Package client provides the request executor behind pacer.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithInterval(250 * time.Millisecond),
//		client.WithLogger(slog.Default()),
//	)
//
// [WithInterval] guarantees that consecutive requests start at least the
// given duration apart, across all goroutines sharing the Client.
// [WithThrottle] selects a token bucket instead.
//
// # Making Requests
//
// Describe the request with [NewDescriptor] and fetch it:
//
//	u := client.URL("https", "api.example.com", "/v1/resource")
//	d, err := client.NewDescriptor(http.MethodGet, u,
//		client.WithParams(map[string]string{"page": "2"}),
//	)
//	raw, err := c.FetchData(ctx, d)
//	val, err := c.FetchJSON(ctx, d)
//
// # Errors
//
// Non-2xx/3xx statuses, content type mismatches, undecodable JSON and
// cancellation come back as an [*Error] with a [normalize.Kind]. Other
// transport failures are returned exactly as net/http reported them. Use
// [IsExplicitlyCancelled] to tell a caller's cancellation apart from a
// failure.
//
// Package [github.com/adamwoolhether/pacer/client/batch] fans many
// descriptors out through one Client.
package client
