// Package pacer exposes the client builder.
package pacer

import (
	"github.com/adamwoolhether/pacer/client"
)

// NewClient instantiates a new *client.Client with the provided options.
// Without options requests are sent unthrottled through http.DefaultTransport
// and nothing is logged.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
