// Package apierror holds the JSON envelopes for every 4xx/5xx response, so
// clients see one shape and internals (SQL errors, stacks) never leak.
package apierror

// APIError is the canonical error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError reports request fields that failed their validate tags.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
