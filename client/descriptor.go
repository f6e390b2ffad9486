package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Descriptor describes one outbound request. It is treated as immutable:
// the client never modifies a Descriptor it is given.
type Descriptor struct {
	Method      string              `json:"method" validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	URL         string              `json:"url" validate:"required,url"`
	Params      map[string]string   `json:"params"`
	Headers     map[string][]string `json:"headers"`
	Encoding    Encoding            `json:"encoding" validate:"min=0,max=3"`
	Payload     any                 `json:"-"`
	ContentType string              `json:"contentType"`
	Cookies     []*http.Cookie      `json:"-"`
}

// NewDescriptor builds and validates a Descriptor for method and reqURL.
func NewDescriptor(method string, reqURL *url.URL, opts ...DescriptorOption) (Descriptor, error) {
	if reqURL == nil {
		return Descriptor{}, fmt.Errorf("url must not be nil")
	}

	d := Descriptor{
		Method: method,
		URL:    reqURL.String(),
	}

	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Descriptor{}, err
		}
	}

	if err := Validate(d); err != nil {
		return Descriptor{}, fmt.Errorf("validating descriptor: %w", err)
	}

	return d, nil
}

// request instantiates the *http.Request described by d.
func (d Descriptor) request(ctx context.Context) (*http.Request, error) {
	reqURL, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	enc := d.Encoding
	if enc == EncodingDefault {
		enc = defaultEncoding(d.Method)
	}

	var (
		body        io.Reader = http.NoBody
		contentType string
	)

	switch {
	case d.Payload != nil:
		var payload bytes.Buffer
		if err := json.NewEncoder(&payload).Encode(d.Payload); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body, contentType = &payload, "application/json"
		setQuery(reqURL, d.Params)

	case enc == EncodingQuery:
		setQuery(reqURL, d.Params)

	case enc == EncodingJSON && len(d.Params) > 0:
		data, err := json.Marshal(d.Params)
		if err != nil {
			return nil, fmt.Errorf("encoding request params: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"

	case enc == EncodingForm && len(d.Params) > 0:
		form := url.Values{}
		for k, v := range d.Params {
			form.Set(k, v)
		}
		body, contentType = strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range d.Cookies {
		req.AddCookie(cookie)
	}

	if d.ContentType != "" {
		contentType = d.ContentType
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for k, v := range d.Headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	return req, nil
}

func setQuery(u *url.URL, params map[string]string) {
	if len(params) == 0 {
		return
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
}

// URL creates a url.URL for use in NewDescriptor.
func URL(scheme, host, path string, opts ...URLOption) *url.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	if settings.port != nil {
		host = fmt.Sprintf("%s:%d", host, *settings.port)
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}

	if settings.queryStrings != nil {
		queryParams := url.Values{}
		for k, v := range settings.queryStrings {
			queryParams.Add(k, v)
		}

		endpoint.RawQuery = queryParams.Encode()
	}

	return &endpoint
}
