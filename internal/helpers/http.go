package helpers

import (
	"net/http"
	"strings"

	"github.com/isometry/webhook-relay/internal/models"
)

// RespondHTTP writes the response headers, status code and body to rw. A zero status code is sent as 200.
func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(response.Body))
}

// LowerHeaders flattens h into a map keyed by lower-cased header name, keeping the first value of each.
func LowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		headers[strings.ToLower(k)] = v[0]
	}
	return headers
}

// LowerKeys returns a copy of h keyed by lower-cased header name.
func LowerKeys(h map[string]string) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		headers[strings.ToLower(k)] = v
	}
	return headers
}
