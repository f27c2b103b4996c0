package gateway

import (
	"errors"
	"fmt"
)

// ErrConversationClosed is returned by Send after Close.
var ErrConversationClosed = errors.New("conversation closed")

// APICallError represents a failed call to the generative AI service
type APICallError struct {
	Operation string
	Cause     error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Operation)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
