package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/textproto"
	"time"

	"github.com/adamwoolhether/pacer/throttle"
	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	noFollowRedirects bool
	logger            *slog.Logger

	interval    *time.Duration
	bucket      *bucketConfig
	acquirer    throttle.Acquirer
	clock       throttle.Clock
	seq         Sequence
	tracer      trace.Tracer
	requestID   string
	classifiers []Classifier
	maxBodySize int64
}

type bucketConfig struct {
	rps   float64
	burst int
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
// 3xx responses are then returned to the caller as successes.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
// Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithInterval enforces a minimum gap between the starts of consecutive
// requests. A zero interval leaves requests unthrottled.
func WithInterval(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return fmt.Errorf("interval[%s]: %w", d, throttle.ErrNegativeInterval)
		}
		c.interval = &d
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests
// per second and burst capacity. Unlike [WithInterval], unused allowance
// accumulates up to burst.
func WithThrottle(rps float64, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%g] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.bucket = &bucketConfig{rps: rps, burst: burst}
		return nil
	}
}

// WithAcquirer installs a custom limiter, e.g. a [throttle.Gate] shared
// between several clients.
func WithAcquirer(a throttle.Acquirer) Option {
	return func(c *options) error {
		if a == nil {
			return errors.New("acquirer must not be nil")
		}
		c.acquirer = a
		return nil
	}
}

// WithClock sets the time source used by the [WithInterval] gate.
func WithClock(clock throttle.Clock) Option {
	return func(c *options) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}
		c.clock = clock
		return nil
	}
}

// WithSequence replaces the correlation id generator.
func WithSequence(seq Sequence) Option {
	return func(c *options) error {
		if seq == nil {
			return errors.New("sequence must not be nil")
		}
		c.seq = seq
		return nil
	}
}

// WithTracer injects the given tracer into the Client.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithRequestID sets a per-request id header on every outgoing request.
// The id is the active trace id, or a random UUID without tracing. An
// empty header name selects X-Request-ID.
func WithRequestID(header string) Option {
	return func(c *options) error {
		if header == "" {
			header = defaultRequestIDHeader
		}
		c.requestID = textproto.CanonicalMIMEHeaderKey(header)
		return nil
	}
}

// WithClassifiers appends error classifiers run before normalization.
func WithClassifiers(cls ...Classifier) Option {
	return func(c *options) error {
		c.classifiers = append(c.classifiers, cls...)
		return nil
	}
}

// WithMaxBodySize caps the response body size. Larger bodies fail with
// [ErrBodyTooLarge] instead of being returned truncated.
func WithMaxBodySize(n int64) Option {
	return func(c *options) error {
		if n <= 0 {
			return fmt.Errorf("max body size[%d] %w", n, throttle.ErrMustNotBeZero)
		}
		c.maxBodySize = n
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

// A User-Agent set on the request itself takes precedence.
func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") != "" {
		return ua.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// FetchOption is a functional option for [Client.FetchData] and friends.
// Together the options form the response validation applied to a request.
type FetchOption func(options *fetchOpts) error

type fetchOpts struct {
	contentTypes []string
	cachePolicy  *CachePolicy
	useJSONNum   bool
}

// WithAllowedContentTypes rejects responses whose media type is not one
// of types. Parameters such as charset are ignored.
func WithAllowedContentTypes(types ...string) FetchOption {
	return func(opts *fetchOpts) error {
		if len(types) == 0 {
			return errors.New("allowed content types must not be empty")
		}

		opts.contentTypes = types

		return nil
	}
}

// WithCachePolicy passes p through to the transport.
func WithCachePolicy(p CachePolicy) FetchOption {
	return func(opts *fetchOpts) error {
		if p.MaxAge < 0 {
			return errors.New("cache max age must not be negative")
		}

		opts.cachePolicy = &p

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() FetchOption {
	return func(opts *fetchOpts) error {
		opts.useJSONNum = true

		return nil
	}
}

// DescriptorOption is a functional option for [NewDescriptor].
type DescriptorOption func(d *Descriptor) error

// WithParams sets the request parameters.
func WithParams(params map[string]string) DescriptorOption {
	return func(d *Descriptor) error {
		d.Params = params

		return nil
	}
}

// WithEncoding selects where params are placed.
func WithEncoding(enc Encoding) DescriptorOption {
	return func(d *Descriptor) error {
		d.Encoding = enc

		return nil
	}
}

// WithPayload sets the JSON-encoded request body. Params, if any, move to
// the query string.
func WithPayload(body any) DescriptorOption {
	return func(d *Descriptor) error {
		d.Payload = body

		return nil
	}
}

// WithContentType overrides the Content-Type derived from the encoding.
func WithContentType(contentType string) DescriptorOption {
	return func(d *Descriptor) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		d.ContentType = contentType

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) DescriptorOption {
	return func(d *Descriptor) error {
		d.Headers = headers

		return nil
	}
}

// WithCookies attaches the given cookies to the outgoing request.
func WithCookies(cookies ...*http.Cookie) DescriptorOption {
	return func(d *Descriptor) error {
		d.Cookies = cookies

		return nil
	}
}

// URLOption is a functional option for [URL].
type URLOption func(options *urlOpts)

type urlOpts struct {
	queryStrings map[string]string
	port         *int
}

// WithQueryStrings appends query parameters to the URL.
func WithQueryStrings(queryKV map[string]string) URLOption {
	return func(opts *urlOpts) {
		opts.queryStrings = queryKV
	}
}

// WithPort sets the port number on the URL's host.
func WithPort(port int) URLOption {
	return func(opts *urlOpts) {
		opts.port = &port
	}
}
