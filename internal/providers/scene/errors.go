package scene

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey indicates the call was attempted without a credential.
var ErrMissingAPIKey = errors.New("scene: api key is required")

// ErrEmptyResponse indicates the model call succeeded but carried no usable
// text payload.
var ErrEmptyResponse = errors.New("scene: model returned no usable text")

// UpstreamError reports a failed call to the language-model service. A zero
// StatusCode means the request never reached the service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("scene: upstream call failed: %s", e.Message)
	}
	return fmt.Sprintf("scene: upstream returned status %d: %s", e.StatusCode, e.Message)
}

// MalformedError reports a text payload that could not be parsed into the
// expected structure, or one that parsed but violated the contract.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scene: malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("scene: malformed response: %s", e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Err }
