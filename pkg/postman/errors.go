package postman

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode classifies a failed remote call.
// Codes are strings so they read well in logs and JSON.
type ErrorCode string

const (
	// CodeNetwork indicates the HTTP exchange could not be completed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"
	// CodeUnauthorized indicates the API key was missing or rejected.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// CodeForbidden indicates the API key lacks access to the asset.
	CodeForbidden ErrorCode = "FORBIDDEN"
	// CodeInvalidInput indicates the remote rejected a request body.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	// CodeNotFound indicates the addressed asset does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeRateLimit indicates the remote quota was exhausted.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"
	// CodeUnavailable indicates a remote server-side failure.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// CodeInvalidResponse indicates a success response that could not be decoded.
	CodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// CodeUnknown is used for anything else.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// TransportError reports an HTTP call that did not complete: network and
// DNS failures, timeouts and context cancellation.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a 401 or 403 response.
type AuthError struct {
	Op      string
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("%s: remote rejected credentials (%d)", e.Op, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// RemoteValidationError reports a create or update body the remote refused.
// Payload holds the raw response body for diagnostics.
type RemoteValidationError struct {
	Op      string
	Status  int
	Message string
	Payload string
}

func (e *RemoteValidationError) Error() string {
	msg := fmt.Sprintf("%s: remote rejected definition (%d)", e.Op, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// APIError reports any other unsuccessful response.
type APIError struct {
	Op      string
	Status  int
	Code    ErrorCode
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: api request failed with status %d (%s)", e.Op, e.Status, e.Code)
	}
	return fmt.Sprintf("%s: api request failed (%d %s): %s", e.Op, e.Status, e.Code, e.Message)
}

// CodeOf returns the ErrorCode carried by err or any error it wraps.
func CodeOf(err error) ErrorCode {
	var (
		transportErr  *TransportError
		authErr       *AuthError
		validationErr *RemoteValidationError
		apiErr        *APIError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return CodeNetwork
	case errors.As(err, &authErr):
		if authErr.Status == http.StatusForbidden {
			return CodeForbidden
		}
		return CodeUnauthorized
	case errors.As(err, &validationErr):
		return CodeInvalidInput
	case errors.As(err, &apiErr):
		return apiErr.Code
	}
	return CodeUnknown
}

// classify maps a non-2xx response to the error taxonomy.
func classify(op, method string, status int, payload []byte) error {
	msg := extractMessage(payload)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Op: op, Status: status, Message: msg}

	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) &&
		(method == http.MethodPost || method == http.MethodPut):
		return &RemoteValidationError{Op: op, Status: status, Message: msg, Payload: string(payload)}
	}

	code := CodeUnknown
	switch {
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusTooManyRequests:
		code = CodeRateLimit
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = CodeInvalidInput
	case status >= http.StatusInternalServerError:
		code = CodeUnavailable
	}
	return &APIError{Op: op, Status: status, Code: code, Message: msg}
}

// extractMessage pulls a human-readable message out of an error body.
// It understands {"error":{"name":..,"message":..}}, {"error":".."} and
// {"message":".."}; anything else is returned trimmed.
func extractMessage(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return strings.TrimSpace(string(payload))
	}

	if len(body.Error) > 0 {
		var detail struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Error, &detail); err == nil {
			switch {
			case detail.Name != "" && detail.Message != "":
				return detail.Name + ": " + detail.Message
			case detail.Message != "":
				return detail.Message
			case detail.Name != "":
				return detail.Name
			}
		}
		var text string
		if err := json.Unmarshal(body.Error, &text); err == nil && text != "" {
			return strings.TrimSpace(text)
		}
	}

	if body.Message != "" {
		return strings.TrimSpace(body.Message)
	}
	return strings.TrimSpace(string(payload))
}
