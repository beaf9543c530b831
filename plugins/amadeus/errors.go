package amadeus

import (
	"errors"
	"fmt"
)

// ErrMissingAccessToken is wrapped by AuthError when the token endpoint
// answers 2xx without an access_token.
var ErrMissingAccessToken = errors.New("access token not found in authentication response")

// AuthError means no bearer token could be obtained.
type AuthError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("amadeus authentication failed: %s", e.Status)
	}
	return fmt.Sprintf("amadeus authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SearchError means a listing or offers endpoint was unreachable, answered
// with a non-2xx status, or sent a body that is not JSON.
type SearchError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *SearchError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("amadeus %s failed: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("amadeus %s failed: %v", e.Endpoint, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// MappingError means a successful response did not have the shape we map from.
// Unlike AuthError and SearchError it is returned to the caller.
type MappingError struct {
	Field string
	Value string
	Err   error
}

func (e *MappingError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("unexpected amadeus response: %s=%q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("unexpected amadeus response: %s: %v", e.Field, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

var errMissingField = errors.New("missing field")

// IsUpstreamFailure reports whether err is one of the fail-soft error kinds.
func IsUpstreamFailure(err error) bool {
	var authErr *AuthError
	var searchErr *SearchError
	return errors.As(err, &authErr) || errors.As(err, &searchErr)
}
