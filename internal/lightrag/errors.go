package lightrag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind is the machine-readable classification carried by every gateway
// error, both backend failures and local dispatch failures.
type ErrorKind string

const (
	KindConnection       ErrorKind = "connection_failure"
	KindAuth             ErrorKind = "auth_failure"
	KindValidation       ErrorKind = "validation_failure"
	KindBackendAPI       ErrorKind = "backend_api_failure"
	KindTimeout          ErrorKind = "timeout"
	KindUnknownNamespace ErrorKind = "unknown_namespace"
	KindUnknownOperation ErrorKind = "unknown_operation"
	KindNameMismatch     ErrorKind = "name_mismatch"
	KindMissingArguments ErrorKind = "missing_arguments"
)

// Error is the uniform error type surfaced at both protocol boundaries.
// StatusCode and Payload are only set for backend responses and preserve the
// original response so callers see what the backend actually said.
type Error struct {
	Kind       ErrorKind       `json:"error_type"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	Payload    json.RawMessage `json:"response_data,omitempty"`
	Missing    []string        `json:"missing,omitempty"`
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates an error with the given kind and formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewMissingArguments creates a missing_arguments error listing the absent
// required fields for an operation.
func NewMissingArguments(operation string, missing []string) *Error {
	return &Error{
		Kind:    KindMissingArguments,
		Message: fmt.Sprintf("missing required arguments for %s: %v", operation, missing),
		Missing: missing,
	}
}

// AsError unwraps err into *Error, wrapping foreign errors as connection
// failures so the boundary always has a kind to map.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindConnection, Message: err.Error()}
}

// HTTPStatus maps an error kind to the status code the gateway's own HTTP
// surface responds with. Backend failures relay the backend's status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindNameMismatch, KindMissingArguments:
		return http.StatusBadRequest
	case KindUnknownNamespace, KindUnknownOperation:
		return http.StatusNotFound
	case KindAuth:
		if e.StatusCode == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindConnection:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindBackendAPI:
		if e.StatusCode > 0 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// classifyStatus maps a backend HTTP status code plus response body to a typed
// error. The original status code and payload are always preserved.
func classifyStatus(statusCode int, body []byte) *Error {
	msg := fmt.Sprintf("HTTP %d", statusCode)

	var payload json.RawMessage
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Valid(body) {
		payload = json.RawMessage(body)
		if json.Unmarshal(body, &parsed) == nil {
			if parsed.Detail != "" {
				msg = fmt.Sprintf("HTTP %d: %s", statusCode, parsed.Detail)
			} else if parsed.Message != "" {
				msg = fmt.Sprintf("HTTP %d: %s", statusCode, parsed.Message)
			}
		}
	} else if len(body) > 0 {
		msg = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(body)))
	}

	kind := KindBackendAPI
	switch {
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		kind = KindValidation
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = KindAuth
	case statusCode == http.StatusRequestTimeout:
		kind = KindTimeout
	}

	return &Error{Kind: kind, Message: msg, StatusCode: statusCode, Payload: payload}
}

// classifyTransport maps a transport-level failure (no response received) to
// either a timeout or a connection error.
func classifyTransport(err error, url string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "request to %s timed out: %v", url, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, "request to %s timed out: %v", url, err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(KindConnection, "request to %s canceled: %v", url, err)
	}
	return NewError(KindConnection, "connection failed to %s: %v", url, err)
}
