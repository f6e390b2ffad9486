package client

import (
	"github.com/adamwoolhether/pacer/normalize"
)

// Re-exported from [normalize] so callers only import client.

type (
	// Error is the normalized failure returned for HTTP status, content
	// type, decode and cancellation failures.
	Error = normalize.Error

	// Classifier may reinterpret an error before it is normalized.
	Classifier = normalize.Classifier
)

// Sentinel errors.

var (
	// ErrUnexpectedStatusCode indicates a status outside [200, 400).
	ErrUnexpectedStatusCode = normalize.ErrUnexpectedStatusCode

	// ErrAuthFailure is joined with ErrUnexpectedStatusCode on 401 and 403.
	ErrAuthFailure = normalize.ErrAuthFailure

	// ErrUnexpectedContentType indicates a Content-Type outside the allow-list.
	ErrUnexpectedContentType = normalize.ErrUnexpectedContentType

	// ErrBodyTooLarge indicates a response body over the configured maximum.
	ErrBodyTooLarge = normalize.ErrBodyTooLarge

	// ErrDecode indicates a response body that is not valid JSON.
	ErrDecode = normalize.ErrDecode

	// ErrCancelled marks cooperative cancellation.
	ErrCancelled = normalize.ErrCancelled
)

// IsExplicitlyCancelled reports whether err was caused by the caller
// cancelling the request, as opposed to a real failure.
func IsExplicitlyCancelled(err error) bool {
	return normalize.IsExplicitlyCancelled(err)
}
