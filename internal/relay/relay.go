// Package relay forwards an arbitrary JSON payload to a single preconfigured webhook URL
// and translates the outcome into a JSON reply for the original caller.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds the outbound call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// Relay forwards payloads to a fixed webhook URL. It is safe for concurrent use.
type Relay struct {
	webhookURL string
	client     *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	warnMissing rate.Sometimes
}

// NewRelay initializes a Relay with the given options. An empty webhook URL is accepted;
// every invocation then fails with ConfigurationMissingError.
func NewRelay(opts ...Option) *Relay {
	_inst := &Relay{
		timeout:     DefaultTimeout,
		warnMissing: rate.Sometimes{Interval: time.Minute},
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.client == nil {
		_inst.client = &http.Client{}
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// Configured reports whether a target webhook URL is set.
func (r *Relay) Configured() bool {
	return r.webhookURL != ""
}

// Forward posts payload to the configured webhook URL. The payload must be valid JSON and is sent
// with insignificant whitespace removed; member order and values are preserved.
// The outbound call is detached from ctx cancellation and bounded by the relay timeout only.
func (r *Relay) Forward(ctx context.Context, payload []byte) error {
	if !r.Configured() {
		r.warnMissing.Do(func() {
			r.logger.Warn("refusing to forward: webhook URL missing")
		})
		r.metrics.ObserveForward(metrics.OutcomeMissingURL, 0)
		return &ConfigurationMissingError{}
	}

	var body bytes.Buffer
	if err := json.Compact(&body, payload); err != nil {
		r.logger.Warn("invalid JSON payload", slog.Any("error", err))
		r.metrics.ObserveForward(metrics.OutcomeFailed, 0)
		return &ForwardingError{Cause: errors.Wrap(err, "invalid JSON payload")}
	}

	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, &body)
	if err != nil {
		r.metrics.ObserveForward(metrics.OutcomeFailed, 0)
		return &ForwardingError{Cause: errors.Wrap(err, "failed to create webhook request")}
	}
	req.Header.Set("Content-Type", "application/json")

	r.logger.Debug("forwarding payload...", slog.Int("size", body.Len()), slog.String("preview", helpers.Truncate(body.String(), 64)))
	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		r.logger.Warn("webhook request failed", slog.String("error", Message(err)), slog.Duration("elapsed", elapsed))
		r.metrics.ObserveForward(metrics.OutcomeFailed, elapsed)
		return &ForwardingError{Cause: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.Warn("webhook rejected payload", slog.Int("statusCode", resp.StatusCode), slog.Duration("elapsed", elapsed))
		r.metrics.ObserveForward(metrics.OutcomeFailed, elapsed)
		return NewForwardingError("webhook responded with status %d", resp.StatusCode)
	}

	r.logger.Debug("payload forwarded", slog.Int("statusCode", resp.StatusCode), slog.Duration("elapsed", elapsed))
	r.metrics.ObserveForward(metrics.OutcomeOK, elapsed)
	return nil
}

// Handle forwards payload and converts the outcome into the caller-facing JSON response.
func (r *Relay) Handle(ctx context.Context, payload []byte) models.Response {
	return Translate(r.Forward(ctx, payload))
}

// Translate maps the result of Forward onto a status code and JSON reply.
func Translate(err error) models.Response {
	if err == nil {
		return newResponse(http.StatusOK, models.Reply{Status: "ok"})
	}

	var missing *ConfigurationMissingError
	if errors.As(err, &missing) {
		return newResponse(http.StatusInternalServerError, models.Reply{Error: MissingURLMessage})
	}
	return newResponse(http.StatusInternalServerError, models.Reply{Error: Message(err)})
}

// Reply decodes the JSON envelope carried by response.
func Reply(response models.Response) models.Reply {
	var reply models.Reply
	if err := json.Unmarshal([]byte(response.Body), &reply); err != nil {
		return models.Reply{Error: FallbackMessage}
	}
	return reply
}

func newResponse(statusCode int, reply models.Reply) models.Response {
	body, err := json.Marshal(reply)
	if err != nil {
		body = []byte(`{"error":"` + FallbackMessage + `"}`)
	}
	headers := make(map[string]string, len(jsonHeaders))
	for k, v := range jsonHeaders {
		headers[k] = v
	}
	return models.Response{
		Body:       string(body),
		Headers:    headers,
		StatusCode: statusCode,
	}
}
