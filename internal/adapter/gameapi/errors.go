package gameapi

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is returned without touching the network while the breaker is open.
var ErrServiceUnavailable = errors.New("game service unavailable")

// APIError is a non-2xx answer from the game service.
// Message carries the service's "error" field verbatim and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed (%d)", e.StatusCode)
}

// IsServerFault reports whether the failure is on the service side rather than a rejected request.
func (e *APIError) IsServerFault() bool {
	return e.StatusCode >= 500
}
