package memobird

import (
	"errors"
	"fmt"
)

// ErrEmptyContent is returned when a submission would carry no printable
// payload at all.
var ErrEmptyContent = errors.New("memobird: empty print content")

// ConnectError reports a failure to reach a host at all (DNS, refused
// connection, reset, and so on).
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError reports a request that did not complete within the
// configured deadline.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP status from the printer service or
// from a remote image host.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// ImageError reports image content that could not be turned into a
// printable payload: corrupt or unsupported data, or a remote resource
// that is not an image.
type ImageError struct {
	Reason string
	Err    error
}

func (e *ImageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid image: %s", e.Reason)
	}
	return fmt.Sprintf("invalid image: %s: %v", e.Reason, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// APIError reports a business failure signalled through the Memobird
// response envelope (showapi_res_code != 1), for example a device that is
// offline or a payload the service rejected.
type APIError struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("printer service error (API code %d, HTTP status %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// AuthError reports a failure to establish or re-establish the device
// binding. Temporary reports whether the underlying cause was transient
// (network trouble) rather than a rejection by the service, so callers can
// decide whether retrying later is worthwhile.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Temporary reports whether the binding failure was caused by a transport
// problem rather than by the printer service rejecting the credentials.
func (e *AuthError) Temporary() bool {
	var ce *ConnectError
	var te *TimeoutError
	return errors.As(e.Err, &ce) || errors.As(e.Err, &te)
}
