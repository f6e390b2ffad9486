package client

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	// defaultMaxBodySize caps how much of a response body is read into memory.
	defaultMaxBodySize = 10 << 20 // 10MB

	defaultRequestIDHeader = "X-Request-ID"

	// maxDrain bounds how much of an unread body is discarded before close.
	maxDrain = 64 << 10
)

// JSONContentTypes is the allow-list applied by [Client.FetchJSON].
var JSONContentTypes = []string{"application/json", "text/plain"}

// execFn represents a func to operate on a validated response body.
type execFn func(status int, body []byte) error

// Sequence hands out correlation ids. Values only need to be unique and
// increasing; they carry no meaning beyond matching log lines.
type Sequence interface {
	Next() uint64
}

type counter struct {
	n atomic.Uint64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() Sequence {
	return &counter{}
}

func (c *counter) Next() uint64 {
	return c.n.Add(1)
}

// Encoding selects where a Descriptor's Params are placed.
type Encoding int

const (
	// EncodingDefault uses the query string for GET, HEAD, DELETE and
	// OPTIONS and a JSON body otherwise.
	EncodingDefault Encoding = iota
	EncodingQuery
	EncodingJSON
	EncodingForm
)

// CacheMode names a caching directive for the transport.
type CacheMode int

const (
	CacheDefault CacheMode = iota
	CacheNoStore
	CacheNoCache
	CacheOnlyIfCached
)

// CachePolicy is handed to the transport untouched. The client renders it
// as a Cache-Control request header and stores it in the request context,
// where a caching http.RoundTripper can read it with [CachePolicyFromContext].
type CachePolicy struct {
	Mode   CacheMode
	MaxAge time.Duration
}

// Header returns the Cache-Control value for p, or "" when p asks for nothing.
func (p CachePolicy) Header() string {
	switch p.Mode {
	case CacheNoStore:
		return "no-store"
	case CacheNoCache:
		return "no-cache"
	case CacheOnlyIfCached:
		return "only-if-cached"
	}

	if p.MaxAge > 0 {
		return fmt.Sprintf("max-age=%d", int(p.MaxAge.Seconds()))
	}

	return ""
}

type cachePolicyKey struct{}

// CachePolicyFromContext returns the policy attached to a request's context.
func CachePolicyFromContext(ctx context.Context) (CachePolicy, bool) {
	p, ok := ctx.Value(cachePolicyKey{}).(CachePolicy)
	return p, ok
}

func withCachePolicy(ctx context.Context, p CachePolicy) context.Context {
	return context.WithValue(ctx, cachePolicyKey{}, p)
}

// defaultEncoding resolves EncodingDefault for method.
func defaultEncoding(method string) Encoding {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return EncodingQuery
	default:
		return EncodingJSON
	}
}
