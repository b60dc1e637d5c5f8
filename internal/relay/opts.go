package relay

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/isometry/webhook-relay/internal/metrics"
)

// Option defines a function type used to configure an instance of the Relay struct.
type Option func(*Relay)

// WithWebhookURL sets the target URL every payload is forwarded to.
func WithWebhookURL(url string) Option {
	return func(r *Relay) {
		r.webhookURL = url
	}
}

// WithHTTPClient sets the client used for the outbound call.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Relay) {
		r.client = client
	}
}

// WithTimeout bounds the outbound call. A zero or negative value disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Relay) {
		r.timeout = timeout
	}
}

// WithLogger sets the logger instance for the relay.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithMetrics records forward outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}
