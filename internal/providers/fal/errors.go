package fal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey indicates the call was attempted without a credential.
var ErrMissingAPIKey = errors.New("fal: api key is required")

// ErrNotReady is the provider's "come back later" signal: the result
// endpoint answered with a client-error status because the render has not
// completed. It is a normal, retriable outcome, not a failure.
var ErrNotReady = errors.New("fal: result not ready")

// ErrNoImage indicates a completed job whose payload carries no image.
var ErrNoImage = errors.New("fal: no image produced")

// QueueError reports a failed call to the render queue. StatusCode is the
// upstream status when it is a valid HTTP error code, otherwise 500.
type QueueError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("fal: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// FetchError reports a failure retrieving the final binary artifact from the
// content store. Kept distinct from QueueError so callers never conflate a
// broken CDN fetch with a render-service error.
type FetchError struct {
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fal: failed to fetch generated image (status %d): %s", e.StatusCode, e.Message)
}

// normalizeStatus passes valid HTTP error codes through and folds everything
// else into a generic server error.
func normalizeStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusInternalServerError
}
