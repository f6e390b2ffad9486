// Package decode turns raw response bytes into JSON values for callers
// and into printable strings for logs.
package decode

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidJSON is wrapped by every error returned from [JSON] and [Into].
var ErrInvalidJSON = errors.New("invalid json")

// Option configures decoding.
type Option func(*options)

type options struct {
	useNumber bool
}

// WithNumber keeps numbers as [json.Number] instead of float64.
func WithNumber() Option {
	return func(o *options) {
		o.useNumber = true
	}
}

// JSON decodes raw into a generic JSON value. raw must hold exactly
// one JSON value, optionally surrounded by whitespace.
func JSON(raw []byte, opts ...Option) (any, error) {
	var v any
	if err := Into(raw, &v, opts...); err != nil {
		return nil, err
	}

	return v, nil
}

// Into decodes raw into dst.
func Into[T any](raw []byte, dst *T, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	if o.useNumber {
		d.UseNumber()
	}

	if err := d.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}

	return nil
}

// LogString renders raw for a log line: indented JSON when raw parses,
// hex otherwise.
func LogString(raw []byte) string {
	if json.Valid(raw) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			return buf.String()
		}
	}

	return hex.EncodeToString(raw)
}
