package processor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrMissingAPIKey    = errors.New("processor api key is not configured")
)

// VerificationError wraps any webhook verification failure. It never reaches
// an event handler; the endpoint turns it into a 400.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("webhook verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the processor. The message is the
// processor's own, passed through to callers that surface payment failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("processor returned status %d", e.StatusCode)
	}
	return e.Message
}
