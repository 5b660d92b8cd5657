package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the normalized failure for any API call. Status is the HTTP status
// code, or 0 when no response was received at all (transport failure). Message
// carries the server's "detail" text verbatim when one was returned.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsNetwork reports whether err is a transport failure (no response reached).
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsAuth reports whether err is a 401 or 403 response.
func IsAuth(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsServer reports whether err is an opaque 5xx response.
func IsServer(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}
