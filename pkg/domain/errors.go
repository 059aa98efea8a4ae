package domain

import "fmt"

// ConfigurationError marks missing or invalid caller input and missing
// provider credentials. Surfaced as a client error, never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ProviderError wraps a transport or API failure from an external provider.
// Fatal for the enclosing call; the image pipeline isolates it to the
// affected item, text-generation failures abort the whole request.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
