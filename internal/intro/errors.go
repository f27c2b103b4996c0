package intro

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks requests refused before any service call.
	ErrValidation = errors.New("invalid self introduction request")
	// ErrNoIntro is returned when no introduction could be generated.
	ErrNoIntro = errors.New("could not generate self introduction")
)

// ValidationError lists the missing request fields
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: missing %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ParseError represents an unusable generation response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
