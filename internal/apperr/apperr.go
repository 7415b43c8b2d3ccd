// Package apperr classifies failures so each layer can decide what escapes:
// configuration problems are fatal only at construction time, upstream
// problems degrade to empty results, validation problems become user-facing
// messages, and anything else is logged and truncated.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError marks a missing or placeholder credential or another
// setup problem. It is fatal when constructing an adapter, nowhere else.
type ConfigurationError struct {
	Service string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration: %s", e.Service, e.Reason)
}

// NewConfiguration builds a ConfigurationError for the named service.
func NewConfiguration(service, reason string) *ConfigurationError {
	return &ConfigurationError{Service: service, Reason: reason}
}

// UpstreamError marks a network or HTTP failure talking to an event source.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream wraps err as an upstream failure of the named service.
func NewUpstream(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// ValidationError marks malformed input to filtering or scoring.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidation builds a ValidationError.
func NewValidation(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage converts any internal error into a message fit for the
// conversational surface. Unclassified errors are truncated so stack noise
// never reaches the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return fmt.Sprintf("The %s service is not configured. Please check your credentials.", ce.Service)
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return "I'm having trouble connecting to the event service. Please check your connection and try again."
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "The information provided is not valid. Please check your input and try again."
	}
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	return "I encountered an error while processing your request: " + msg + " Please try again."
}
