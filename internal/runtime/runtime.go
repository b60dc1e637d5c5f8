// Package runtime adapts the hosting environments (AWS Lambda, plain HTTP) to the webhook relay.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/pkg/errors"
)

// DefaultMaxBodyBytes caps inbound HTTP bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Request is the Lambda HTTP request. API Gateway v1, v2 and function URL payloads share the fields it reads.
type Request = events.APIGatewayV2HTTPRequest

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger instance for the runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithPayloadType sets the Lambda payload type used to shape HTTP responses.
func WithPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// WithMaxBodyBytes caps the size of bodies read by ServeHTTP. A zero or negative value disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Runtime) {
		r.maxBodyBytes = n
	}
}

// Runtime dispatches inbound invocations to the relay.
type Runtime struct {
	relay        *relay.Relay
	logger       *slog.Logger
	payloadType  string
	maxBodyBytes int64
}

// NewRuntime creates a new runtime instance. An unsupported payload type is rejected here,
// before any invocation can reach the relay.
func NewRuntime(r *relay.Relay, opts ...Option) (*Runtime, error) {
	_inst := &Runtime{
		relay:        r,
		payloadType:  config.PayloadAPIGatewayV2,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	switch _inst.payloadType {
	case config.PayloadAPIGatewayV1, config.PayloadAPIGatewayV2, config.PayloadLambdaURL:
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", _inst.payloadType)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst, nil
}

// Lambda is the Lambda handler for HTTP integrations
func (r *Runtime) Lambda(ctx context.Context, req Request) (any, error) {
	r.logger.Info("received Lambda HTTP request", slog.String("payloadType", r.payloadType))

	var result models.Response
	body, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		r.logger.Warn("failed to decode request body", slog.Any("error", err))
		result = relay.Translate(&relay.ForwardingError{Cause: err})
	} else {
		result = r.process(ctx, models.Request{Body: string(body), Headers: helpers.LowerKeys(req.Headers)})
	}
	r.logger.Info("handled request", slog.Int("statusCode", result.StatusCode))

	switch r.payloadType {
	case config.PayloadAPIGatewayV1:
		return events.APIGatewayProxyResponse{
			Body:       result.Body,
			Headers:    result.Headers,
			StatusCode: result.StatusCode,
		}, nil
	case config.PayloadAPIGatewayV2:
		return events.APIGatewayV2HTTPResponse{
			Body:       result.Body,
			Headers:    result.Headers,
			StatusCode: result.StatusCode,
		}, nil
	case config.PayloadLambdaURL:
		return events.LambdaFunctionURLResponse{
			Body:       result.Body,
			Headers:    result.Headers,
			StatusCode: result.StatusCode,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// LambdaForEvent is the Lambda handler for direct invocations: the event document is the payload.
// Failures are reported in the reply and never as invocation errors, so Lambda does not retry them.
func (r *Runtime) LambdaForEvent(ctx context.Context, event json.RawMessage) (models.Reply, error) {
	r.logger.Info("received Lambda event")

	result := r.process(ctx, models.Request{Body: string(event)})
	r.logger.Info("handled event", slog.Int("statusCode", result.StatusCode))
	return relay.Reply(result), nil
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))

	reader := req.Body
	if r.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(resp, req.Body, r.maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(relay.Translate(&relay.ForwardingError{Cause: errors.Wrap(err, "failed to read request body")}), resp)
		return
	}

	result := r.process(req.Context(), models.Request{Body: string(body), Headers: helpers.LowerHeaders(req.Header)})
	r.logger.Debug("handled HTTP request", slog.Int("statusCode", result.StatusCode))
	helpers.RespondHTTP(result, resp)
}

func (r *Runtime) process(ctx context.Context, req models.Request) models.Response {
	r.logger.Debug("processing request...", slog.Any("headers", req.Headers), slog.Int("size", len(req.Body)))
	return r.relay.Handle(ctx, []byte(req.Body))
}

func decodeBody(body string, isBase64Encoded bool) ([]byte, error) {
	if !isBase64Encoded {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode base64 request body")
	}
	return decoded, nil
}
