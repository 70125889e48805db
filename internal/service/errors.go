package service

import (
	"errors"
	"fmt"
)

var ErrNotInitialized = errors.New("billingClient is not initialized")

// ValidationError reports a malformed or empty caller argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError wraps a failure returned by the review or billing provider.
// Error renders the message followed by the provider's own detail.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func validationErr(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func providerErr(msg string, err error) error {
	return &ProviderError{Message: msg, Err: err}
}
