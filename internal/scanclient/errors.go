package scanclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is wrapped when the backend answers with a non-2xx code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrMalformedResponse is wrapped when the response body is not a verdict.
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrEmptyIP is returned by UnblockIP when no address is given.
	ErrEmptyIP = errors.New("IP address must not be empty")
)

// ScanError describes why a scan produced an error verdict.
type ScanError struct {
	// Endpoint is the API path that was called, e.g. "/scan/url".
	Endpoint string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("scan %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("scan %s failed: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Details returns the short text shown to users in the error verdict.
func (e *ScanError) Details() string {
	switch {
	case errors.Is(e.Err, ErrUnexpectedStatus):
		return fmt.Sprintf("Unable to scan: backend returned %d", e.StatusCode)
	case errors.Is(e.Err, ErrMalformedResponse):
		return "Unable to scan: backend returned an invalid response"
	default:
		return "Unable to scan: backend unreachable"
	}
}
