package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when preprocessing leaves nothing to embed
	ErrEmptyInput = errors.New("no embeddable text after cleaning input")

	// ErrUnknownProvider is returned for an unrecognized provider setting
	ErrUnknownProvider = errors.New("unknown embedding provider")

	// ErrMissingCredentials is returned when a hosted provider has no API key
	ErrMissingCredentials = errors.New("missing provider credentials")
)

// ProviderError wraps a transport-level failure with provider context
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
