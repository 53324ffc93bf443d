// Package types holds the wire envelopes shared by every gerai HTTP endpoint.
package types

// SuccessEnvelope wraps every 2xx payload so clients always unwrap "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request. Code is one of the
// machine-readable error codes, Message is safe to show an operator, and
// Details carries field-level context for validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError the same way SuccessEnvelope wraps data.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
