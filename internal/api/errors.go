package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// RequestError describes a failed call to the iiko API.
type RequestError struct {
	// Op names the failed call, e.g. "login" or "shifts"
	Op string
	// StatusCode is the HTTP status, zero when no response arrived
	StatusCode int
	// Transient marks failures worth retrying: timeouts, network errors and 5xx.
	Transient bool
	// Err is the underlying cause, if any
	Err error
}

// Error formats the operation with the status and cause it has.
func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err is a RequestError worth retrying.
//
// Parameters:
//   - err: error returned by a client call
//
// Returns:
//   - bool: true for timeouts, network errors and 5xx responses
func IsTransient(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Transient
	}
	return false
}

// IsUnauthorized reports a rejected or expired session key.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == http.StatusUnauthorized || reqErr.StatusCode == http.StatusForbidden
	}
	return false
}

func isTransientNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isTransientStatus(statusCode int) bool {
	return statusCode >= 500
}
