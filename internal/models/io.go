// Package models provides the core data structures for handling relay requests and responses.
package models

// Request represents an incoming client request containing a body and associated headers.
type Request struct {
	Body    string
	Headers map[string]string // lowercase keys to match AWS Lambda proxy request
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}

// Reply is the JSON envelope returned to the caller. Exactly one of Status or Error is set.
type Reply struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}
