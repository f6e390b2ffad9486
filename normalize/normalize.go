// Package normalize maps heterogeneous request failures onto a single
// error taxonomy.
package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/adamwoolhether/pacer/decode"
)

// Classifier may reinterpret err before normalization. It returns the
// replacement and true when it recognises err.
type Classifier func(err error) (error, bool)

// Normalizer turns failures into *Error values, running each error
// through its classifier chain first.
type Normalizer struct {
	classifiers []Classifier
}

// New returns a Normalizer using the default classifiers followed by cls.
func New(cls ...Classifier) *Normalizer {
	chain := make([]Classifier, 0, len(cls)+1)
	chain = append(chain, UnwrapMarshalerError)
	for _, c := range cls {
		if c != nil {
			chain = append(chain, c)
		}
	}

	return &Normalizer{classifiers: chain}
}

// Normalize builds the error returned to the caller.
//
// Cancellation becomes KindCancelled. With a response, err is wrapped in
// an *Error carrying the status, the parsed body when it is JSON, and the
// raw body. Its Kind follows the sentinel in err: KindHTTPStatus,
// KindContentType or KindBodyTooLarge; anything else, such as a failed
// body read, is KindTransport. Without a response err is returned
// as is, so callers can still match specific transport failures.
func (n *Normalizer) Normalize(err error, resp *http.Response, body []byte) error {
	if err == nil {
		return nil
	}

	err = n.classify(err)

	if IsExplicitlyCancelled(err) {
		return &Error{
			Kind: KindCancelled,
			Err:  cancelled(err),
		}
	}

	if resp == nil {
		return err
	}

	var kind Kind
	switch {
	case errors.Is(err, ErrUnexpectedContentType):
		kind = KindContentType
	case errors.Is(err, ErrBodyTooLarge):
		kind = KindBodyTooLarge
	case errors.Is(err, ErrUnexpectedStatusCode):
		kind = KindHTTPStatus
	default:
		// Failed after the status line, e.g. while reading the body.
		kind = KindTransport
	}

	if kind == KindHTTPStatus && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		err = fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}

	ne := Error{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Raw:        body,
		Err:        err,
	}

	if v, perr := decode.JSON(body); perr == nil {
		ne.Body = v
	}

	return &ne
}

// Decode reports a successful response whose body failed to decode.
func (n *Normalizer) Decode(err error, statusCode int, body []byte) error {
	if !errors.Is(err, ErrDecode) {
		err = fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return &Error{
		Kind:       KindDecode,
		StatusCode: statusCode,
		Raw:        body,
		Err:        err,
	}
}

// classify runs err through the chain; the first classifier that claims
// err wins.
func (n *Normalizer) classify(err error) error {
	for _, c := range n.classifiers {
		if replaced, ok := c(err); ok && replaced != nil {
			return replaced
		}
	}

	return err
}

// IsExplicitlyCancelled reports whether err stems from an explicit
// cancellation: a cancelled context or the ErrCancelled marker. Deadline
// expiry is not an explicit cancellation.
func IsExplicitlyCancelled(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// UnwrapMarshalerError surfaces the error returned by a custom
// MarshalJSON method instead of the encoder's wrapper around it.
func UnwrapMarshalerError(err error) (error, bool) {
	var me *json.MarshalerError
	if !errors.As(err, &me) || me.Err == nil {
		return nil, false
	}

	return me.Err, true
}

func cancelled(err error) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
