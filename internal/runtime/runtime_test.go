package runtime_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/isometry/webhook-relay/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	*httptest.Server
	mu     sync.Mutex
	bodies []string
}

func newUpstream(t *testing.T, status int) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.bodies = append(u.bodies, string(body))
		u.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) received() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.bodies...)
}

func newRuntime(t *testing.T, r *relay.Relay, opts ...runtime.Option) *runtime.Runtime {
	t.Helper()
	rtm, err := runtime.NewRuntime(r, opts...)
	require.NoError(t, err)
	return rtm
}

func TestServeHTTP(t *testing.T) {
	testCases := []struct {
		Name           string
		Configured     bool
		UpstreamStatus int
		Method         string
		Body           string
		ExpectedStatus int
		ExpectedBody   string
		ExpectedCalls  int
	}{
		{
			Name:           "missing_configuration",
			Configured:     false,
			UpstreamStatus: http.StatusOK,
			Method:         http.MethodPost,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusInternalServerError,
			ExpectedBody:   `{"error":"Webhook URL missing"}`,
		},
		{
			Name:           "successful_forward",
			Configured:     true,
			UpstreamStatus: http.StatusOK,
			Method:         http.MethodPost,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   `{"status":"ok"}`,
			ExpectedCalls:  1,
		},
		{
			Name:           "method_is_not_constrained",
			Configured:     true,
			UpstreamStatus: http.StatusOK,
			Method:         http.MethodPut,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   `{"status":"ok"}`,
			ExpectedCalls:  1,
		},
		{
			Name:           "upstream_not_found",
			Configured:     true,
			UpstreamStatus: http.StatusNotFound,
			Method:         http.MethodPost,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusInternalServerError,
			ExpectedBody:   `{"error":"webhook responded with status 404"}`,
			ExpectedCalls:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			u := newUpstream(t, tc.UpstreamStatus)
			var opts []relay.Option
			if tc.Configured {
				opts = append(opts, relay.WithWebhookURL(u.URL))
			}
			rtm := newRuntime(t, relay.NewRelay(opts...))

			rr := httptest.NewRecorder()
			rtm.ServeHTTP(rr, httptest.NewRequest(tc.Method, "/", strings.NewReader(tc.Body)))

			assert.Equal(t, tc.ExpectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.ExpectedBody, rr.Body.String())
			assert.Len(t, u.received(), tc.ExpectedCalls)
		})
	}
}

func TestLambda_PayloadTypes(t *testing.T) {
	testCases := []struct {
		Name        string
		PayloadType string
		Check       func(t *testing.T, resp any)
	}{
		{
			Name:        "api_gateway_v1",
			PayloadType: config.PayloadAPIGatewayV1,
			Check: func(t *testing.T, resp any) {
				r, ok := resp.(events.APIGatewayProxyResponse)
				require.True(t, ok, "got %T", resp)
				assert.Equal(t, http.StatusOK, r.StatusCode)
				assert.JSONEq(t, `{"status":"ok"}`, r.Body)
				assert.Equal(t, "application/json", r.Headers["Content-Type"])
			},
		},
		{
			Name:        "api_gateway_v2",
			PayloadType: config.PayloadAPIGatewayV2,
			Check: func(t *testing.T, resp any) {
				r, ok := resp.(events.APIGatewayV2HTTPResponse)
				require.True(t, ok, "got %T", resp)
				assert.Equal(t, http.StatusOK, r.StatusCode)
				assert.JSONEq(t, `{"status":"ok"}`, r.Body)
			},
		},
		{
			Name:        "lambda_url",
			PayloadType: config.PayloadLambdaURL,
			Check: func(t *testing.T, resp any) {
				r, ok := resp.(events.LambdaFunctionURLResponse)
				require.True(t, ok, "got %T", resp)
				assert.Equal(t, http.StatusOK, r.StatusCode)
				assert.JSONEq(t, `{"status":"ok"}`, r.Body)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			u := newUpstream(t, http.StatusNoContent)
			rtm := newRuntime(t, relay.NewRelay(relay.WithWebhookURL(u.URL)),
				runtime.WithPayloadType(tc.PayloadType))

			resp, err := rtm.Lambda(context.Background(), runtime.Request{Body: `{"a":1}`})
			require.NoError(t, err)
			tc.Check(t, resp)
			assert.Equal(t, []string{`{"a":1}`}, u.received())
		})
	}
}

func TestNewRuntime_UnsupportedPayloadType(t *testing.T) {
	u := newUpstream(t, http.StatusOK)

	rtm, err := runtime.NewRuntime(relay.NewRelay(relay.WithWebhookURL(u.URL)), runtime.WithPayloadType("sqs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported lambda payload type: sqs")
	assert.Nil(t, rtm)
	assert.Empty(t, u.received())
}

func TestServeHTTP_BodyLimit(t *testing.T) {
	testCases := []struct {
		Name           string
		MaxBodyBytes   int64
		Body           string
		ExpectedStatus int
		ExpectedCalls  int
	}{
		{
			Name:           "within_limit",
			MaxBodyBytes:   16,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusOK,
			ExpectedCalls:  1,
		},
		{
			Name:           "over_limit",
			MaxBodyBytes:   4,
			Body:           `{"a":1}`,
			ExpectedStatus: http.StatusInternalServerError,
		},
		{
			Name:           "limit_disabled",
			MaxBodyBytes:   0,
			Body:           `{"content":"` + strings.Repeat("x", 2<<20) + `"}`,
			ExpectedStatus: http.StatusOK,
			ExpectedCalls:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			u := newUpstream(t, http.StatusOK)
			rtm := newRuntime(t, relay.NewRelay(relay.WithWebhookURL(u.URL)), runtime.WithMaxBodyBytes(tc.MaxBodyBytes))

			rr := httptest.NewRecorder()
			rtm.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.Body)))

			assert.Equal(t, tc.ExpectedStatus, rr.Code)
			assert.Len(t, u.received(), tc.ExpectedCalls)
			if tc.ExpectedCalls == 0 {
				assert.Contains(t, rr.Body.String(), "request body too large")
			}
		})
	}
}

func TestLambda_Base64Body(t *testing.T) {
	u := newUpstream(t, http.StatusOK)
	rtm := newRuntime(t, relay.NewRelay(relay.WithWebhookURL(u.URL)))

	resp, err := rtm.Lambda(context.Background(), runtime.Request{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"content":"hi"}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.(events.APIGatewayV2HTTPResponse).StatusCode)
	assert.Equal(t, []string{`{"content":"hi"}`}, u.received())

	resp, err = rtm.Lambda(context.Background(), runtime.Request{Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	r := resp.(events.APIGatewayV2HTTPResponse)
	assert.Equal(t, http.StatusInternalServerError, r.StatusCode)
	assert.Contains(t, r.Body, "base64")
	assert.Len(t, u.received(), 1)
}

func TestLambda_RequestDocument(t *testing.T) {
	u := newUpstream(t, http.StatusOK)
	rtm := newRuntime(t, relay.NewRelay(relay.WithWebhookURL(u.URL)),
		runtime.WithPayloadType(config.PayloadAPIGatewayV1))

	// API Gateway v1 proxy event, decoded the way the Lambda runtime does.
	var req runtime.Request
	require.NoError(t, json.Unmarshal([]byte(`{
		"resource": "/relay",
		"httpMethod": "POST",
		"headers": {"Content-Type": "application/json"},
		"body": "{\"username\":\"bot\",\"content\":\"deployed\"}",
		"isBase64Encoded": false
	}`), &req))

	resp, err := rtm.Lambda(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.(events.APIGatewayProxyResponse).StatusCode)
	assert.Equal(t, []string{`{"username":"bot","content":"deployed"}`}, u.received())
}

func TestLambdaForEvent(t *testing.T) {
	testCases := []struct {
		Name           string
		Configured     bool
		UpstreamStatus int
		Expected       models.Reply
	}{
		{
			Name:           "forwarded",
			Configured:     true,
			UpstreamStatus: http.StatusOK,
			Expected:       models.Reply{Status: "ok"},
		},
		{
			Name:           "upstream_failure",
			Configured:     true,
			UpstreamStatus: http.StatusBadRequest,
			Expected:       models.Reply{Error: "webhook responded with status 400"},
		},
		{
			Name:           "missing_configuration",
			UpstreamStatus: http.StatusOK,
			Expected:       models.Reply{Error: relay.MissingURLMessage},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			u := newUpstream(t, tc.UpstreamStatus)
			var opts []relay.Option
			if tc.Configured {
				opts = append(opts, relay.WithWebhookURL(u.URL))
			}
			rtm := newRuntime(t, relay.NewRelay(opts...))

			reply, err := rtm.LambdaForEvent(context.Background(), json.RawMessage(`{"detail":{"a":1}}`))
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, reply)
			if tc.Configured {
				assert.Equal(t, []string{`{"detail":{"a":1}}`}, u.received())
			}
		})
	}
}
