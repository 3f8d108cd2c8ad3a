package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound signals a missing or expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLimit signals that no more sessions can be opened.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrTransport signals a failed round trip to the search service.
	ErrTransport = errors.New("search transport error")
	// ErrUnknownLayer signals an unsupported base layer name.
	ErrUnknownLayer = errors.New("unknown layer")
)

// UpstreamStatusError wraps ErrTransport with the HTTP status returned by the search service.
type UpstreamStatusError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *UpstreamStatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: upstream returned %s: %s", ErrTransport.Error(), e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: upstream returned %s", ErrTransport.Error(), e.Status)
}

func (e *UpstreamStatusError) Unwrap() error { return ErrTransport }

// NewUpstreamStatus creates an upstream status error.
func NewUpstreamStatus(code int, status string) error {
	return &UpstreamStatusError{StatusCode: code, Status: status}
}
