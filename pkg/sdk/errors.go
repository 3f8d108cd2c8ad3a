package geolens

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrSessionNotFound = errors.New("geolens: session not found")
	ErrSessionLimit    = errors.New("geolens: session limit reached")
	ErrInvalidBounds   = errors.New("geolens: invalid period bounds")
	ErrNoCriteria      = errors.New("geolens: no search criteria")
	ErrUnknownLayer    = errors.New("geolens: unknown layer")
	ErrBadRequest      = errors.New("geolens: bad request")
	ErrUpstream        = errors.New("geolens: search service error")
	ErrRateLimited     = errors.New("geolens: rate limited")
)

var codeSentinels = map[string]error{
	"session_not_found": ErrSessionNotFound,
	"session_limit":     ErrSessionLimit,
	"invalid_bounds":    ErrInvalidBounds,
	"no_criteria":       ErrNoCriteria,
	"unknown_layer":     ErrUnknownLayer,
	"bad_request":       ErrBadRequest,
	"upstream_error":    ErrUpstream,
	"rate_limited":      ErrRateLimited,
}

// FieldDetail names the first invalid field of a period bound.
type FieldDetail struct {
	Group   string `json:"group"` // "start" or "end"
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Details    []FieldDetail `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geolens: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error code to its sentinel, nil for unknown codes.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
