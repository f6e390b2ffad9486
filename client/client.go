// Package client executes throttled HTTP requests and normalizes the
// outcome into raw bytes, decoded JSON, or a typed error.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/adamwoolhether/pacer/decode"
	"github.com/adamwoolhether/pacer/normalize"
	"github.com/adamwoolhether/pacer/throttle"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Client wraps the std-lib *http.Client with request spacing, response
// validation and error normalization.
type Client struct {
	c           *http.Client
	logger      *slog.Logger
	acquirer    throttle.Acquirer
	seq         Sequence
	normalizer  *normalize.Normalizer
	tracer      trace.Tracer
	requestID   string
	maxBodySize int64
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:           &http.Client{},
		logger:      slog.New(slog.DiscardHandler),
		seq:         NewSequence(),
		tracer:      noop.NewTracerProvider().Tracer("no-op tracer"),
		maxBodySize: defaultMaxBodySize,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		cpy := *opts.client
		client.c = &cpy
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	client.c.Transport = transport

	acquirer, err := buildAcquirer(opts, func() *slog.Logger { return client.logger })
	if err != nil {
		return nil, fmt.Errorf("configuring throttle: %w", err)
	}
	client.acquirer = acquirer

	if opts.seq != nil {
		client.seq = opts.seq
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.maxBodySize > 0 {
		client.maxBodySize = opts.maxBodySize
	}

	client.requestID = opts.requestID
	client.normalizer = normalize.New(opts.classifiers...)

	return client, nil
}

// buildAcquirer resolves the throttle options. At most one limiter may be configured.
func buildAcquirer(opts options, logFn func() *slog.Logger) (throttle.Acquirer, error) {
	var configured int
	for _, set := range []bool{opts.interval != nil && *opts.interval > 0, opts.bucket != nil, opts.acquirer != nil} {
		if set {
			configured++
		}
	}
	if configured > 1 {
		return nil, errors.New("interval, throttle and acquirer are mutually exclusive")
	}

	switch {
	case opts.acquirer != nil:
		return opts.acquirer, nil

	case opts.bucket != nil:
		return throttle.NewBucket(opts.bucket.rps, opts.bucket.burst)

	case opts.interval != nil && *opts.interval > 0:
		gateOpts := []throttle.GateOption{throttle.WithLogger(logFn)}
		if opts.clock != nil {
			gateOpts = append(gateOpts, throttle.WithClock(opts.clock))
		}
		return throttle.NewGate(*opts.interval, gateOpts...)
	}

	return nil, nil
}

// FetchData sends the request described by d and returns the raw response
// body. Responses outside [200, 400), or with a media type missing from the
// allow-list, fail with an *Error. Transport failures are returned as
// received, except cancellation, which always yields an *Error of kind
// cancelled.
func (c *Client) FetchData(ctx context.Context, d Descriptor, opts ...FetchOption) ([]byte, error) {
	settings, err := fetchSettings(opts)
	if err != nil {
		return nil, err
	}

	return c.exec(ctx, d, settings, nil)
}

// FetchJSON is FetchData restricted to JSON or plain-text responses,
// decoding the body into a generic JSON value.
func (c *Client) FetchJSON(ctx context.Context, d Descriptor, opts ...FetchOption) (any, error) {
	var v any
	if err := fetchInto(ctx, c, d, &v, opts); err != nil {
		return nil, err
	}

	return v, nil
}

// FetchAs is FetchJSON decoding into T.
func FetchAs[T any](ctx context.Context, c *Client, d Descriptor, opts ...FetchOption) (T, error) {
	var v T
	if err := fetchInto(ctx, c, d, &v, opts); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// Descriptor builds a Descriptor.
// It's just a convenience method that wraps the public NewDescriptor func.
func (c *Client) Descriptor(method string, reqURL *url.URL, opts ...DescriptorOption) (Descriptor, error) {
	return NewDescriptor(method, reqURL, opts...)
}

// URL creates a url.URL for use in Descriptor.
// It's just a convenience method that wraps the public URL func.
func (c *Client) URL(scheme, host, path string, opts ...URLOption) *url.URL {
	return URL(scheme, host, path, opts...)
}

func fetchInto[T any](ctx context.Context, c *Client, d Descriptor, dst *T, opts []FetchOption) error {
	settings, err := fetchSettings(append([]FetchOption{WithAllowedContentTypes(JSONContentTypes...)}, opts...))
	if err != nil {
		return err
	}

	var decodeOpts []decode.Option
	if settings.useJSONNum {
		decodeOpts = append(decodeOpts, decode.WithNumber())
	}

	decodeFn := func(status int, body []byte) error {
		if err := decode.Into(body, dst, decodeOpts...); err != nil {
			return c.normalizer.Decode(err, status, body)
		}

		return nil
	}

	_, err = c.exec(ctx, d, settings, decodeFn)

	return err
}

// exec waits for the throttle, runs the request, validates the response and
// runs fn on the body when validation passes.
func (c *Client) exec(ctx context.Context, d Descriptor, settings fetchOpts, fn execFn) ([]byte, error) {
	if err := Validate(d); err != nil {
		return nil, fmt.Errorf("validating descriptor: %w", err)
	}

	if c.acquirer != nil {
		if err := c.acquirer.Acquire(ctx); err != nil {
			err = c.normalizer.Normalize(fmt.Errorf("acquiring throttle: %w", err), nil, nil)
			c.logger.Error("throttle acquire failed", "method", d.Method, "url", d.URL, "error", err)
			return nil, err
		}
	}

	id := c.seq.Next()

	ctx, span := c.startSpan(ctx, id, d)

	var reqID string
	if c.requestID != "" {
		reqID = requestID(span)
	}

	c.logger.Debug("outbound request", "id", id, "method", d.Method, "url", d.URL, "params", d.Params, "request_id", reqID)

	var status int
	fail := func(err error) ([]byte, error) {
		c.logger.Error("inbound response", "id", id, "status", status, "error", err.Error())
		endSpan(span, status, err)
		return nil, err
	}

	if settings.cachePolicy != nil {
		ctx = withCachePolicy(ctx, *settings.cachePolicy)
	}

	req, err := d.request(ctx)
	if err != nil {
		return fail(c.normalizer.Normalize(err, nil, nil))
	}

	inject(ctx, req)
	if reqID != "" {
		req.Header.Set(c.requestID, reqID)
	}
	if settings.cachePolicy != nil {
		if h := settings.cachePolicy.Header(); h != "" {
			req.Header.Set("Cache-Control", h)
		}
	}
	if settings.contentTypes != nil && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", strings.Join(settings.contentTypes, ", "))
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return fail(c.normalizer.Normalize(err, nil, nil))
	}
	status = resp.StatusCode

	defer func() {
		// Draining lets the connection be reused; past maxDrain closing is cheaper.
		if _, err := io.CopyN(io.Discard, resp.Body, maxDrain); err != nil && !errors.Is(err, io.EOF) {
			c.logger.Error("failed to discard unused body", "id", id, "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "id", id, "error", err)
		}
	}()

	// One byte past the cap tells an exact fit from an oversized body.
	limit := c.maxBodySize
	if limit < math.MaxInt64 {
		limit++
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return fail(c.normalizer.Normalize(fmt.Errorf("reading response body: %w", err), resp, body))
	}

	if int64(len(body)) > c.maxBodySize {
		body = body[:c.maxBodySize]
		return fail(c.normalizer.Normalize(fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, c.maxBodySize), resp, body))
	}

	if err := validateResponse(resp, settings); err != nil {
		return fail(c.normalizer.Normalize(err, resp, body))
	}

	if fn != nil {
		if err := fn(status, body); err != nil {
			return fail(err)
		}
	}

	c.logger.Debug("inbound response", "id", id, "status", status, "body", decode.LogString(body))
	endSpan(span, status, nil)

	return body, nil
}

// validateResponse applies the status range and content type checks.
func validateResponse(resp *http.Response, settings fetchOpts) error {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return ErrUnexpectedStatusCode
	}

	if settings.contentTypes == nil {
		return nil
	}

	header := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnexpectedContentType, header)
	}

	for _, allowed := range settings.contentTypes {
		if allowedType, _, err := mime.ParseMediaType(allowed); err == nil && allowedType == mediaType {
			return nil
		}
	}

	return fmt.Errorf("%w: %s not in %v", ErrUnexpectedContentType, mediaType, settings.contentTypes)
}

func fetchSettings(opts []FetchOption) (fetchOpts, error) {
	var settings fetchOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return fetchOpts{}, err
		}
	}

	return settings, nil
}
