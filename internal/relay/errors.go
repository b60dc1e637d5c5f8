package relay

import (
	"net/url"

	"github.com/pkg/errors"
)

const (
	// MissingURLMessage is reported when no target webhook URL is configured.
	MissingURLMessage = "Webhook URL missing"
	// FallbackMessage is reported when a failure carries no description of its own.
	FallbackMessage = "Webhook failed"
)

// ConfigurationMissingError is returned when the relay has no target webhook URL.
type ConfigurationMissingError struct{}

func (m *ConfigurationMissingError) Error() string {
	return MissingURLMessage
}

// ForwardingError wraps any failure while parsing, transmitting or checking the outcome of a forward.
type ForwardingError struct {
	Cause error
}

func (m *ForwardingError) Error() string {
	if m.Cause == nil {
		return ""
	}
	return m.Cause.Error()
}

func (m *ForwardingError) Unwrap() error {
	return m.Cause
}

// NewForwardingError formats a ForwardingError.
func NewForwardingError(format string, args ...any) error {
	return &ForwardingError{Cause: errors.Errorf(format, args...)}
}

// Message returns the description of err, or FallbackMessage when it has none.
// Transport errors are stripped of the request URL, which embeds the webhook secret.
func Message(err error) string {
	if err == nil {
		return FallbackMessage
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}
