package api

import (
	"fmt"
	"strings"
)

// APIError is an application-level failure reported by the cart API.
// Status < 500 means the request itself was rejected and must not be
// retried; the server's message is the one shown to the user.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("cart api: %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return fmt.Sprintf("cart api: %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Retryable reports whether the failure is worth another attempt at the
// transport layer. Only server-side failures qualify.
func (e *APIError) Retryable() bool {
	return e.Status >= 500
}

// UserMessage is the most specific text available for a notification.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
