package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

const (
	// KindTimeout indicates the per-attempt deadline was exceeded.
	KindTimeout ErrorKind = "timeout"
	// KindNetwork indicates a transport-level failure before any status
	// code was received.
	KindNetwork ErrorKind = "network"
	// KindUnauthorized indicates a 401 or 403 response.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindRateLimited indicates a 429 response.
	KindRateLimited ErrorKind = "rate_limited"
	// KindInvalidRequest indicates any other 4xx response.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindServerError indicates a 5xx response.
	KindServerError ErrorKind = "server_error"
)

// Error is a classified API call failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int           // 0 for transport-level failures
	Message    string        // server-supplied message or transport error text
	RetryAfter time.Duration // parsed Retry-After hint, 0 when absent
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is transient. Rate limits, server
// errors, timeouts and network failures are worth another attempt;
// authorization and request errors are permanent.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// RetryAfterHint returns the server-supplied delay hint, if any.
func (e *Error) RetryAfterHint() time.Duration {
	return e.RetryAfter
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// classifyStatus maps a non-2xx HTTP response to a classified error.
func classifyStatus(resp *Response, header http.Header) *Error {
	e := &Error{
		StatusCode: resp.StatusCode,
		Message:    responseMessage(resp),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		e.Kind = KindServerError
	default:
		e.Kind = KindInvalidRequest
	}

	return e
}

// responseMessage extracts a human-readable message from an error response.
// The control plane reports errors as {"error_code": ..., "message": ...};
// the raw body is the fallback when parsing failed.
func responseMessage(resp *Response) string {
	if msg, ok := resp.StringField("message"); ok {
		if code, ok := resp.StringField("error_code"); ok {
			return code + ": " + msg
		}
		return msg
	}
	if len(resp.Raw) > 0 {
		const maxLen = 256
		raw := string(resp.Raw)
		if len(raw) > maxLen {
			raw = raw[:maxLen]
		}
		return raw
	}
	return http.StatusText(resp.StatusCode)
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
