package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a StatusError
type Kind int

const (
	// KindClient is a 4xx response
	KindClient Kind = iota + 1
	// KindServer is a 5xx response
	KindServer
	// KindUnexpected is any other non-2xx, such as a redirect the
	// transport did not follow
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// NetworkError means no response was received
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the exchange was cut off by a deadline
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Canceled reports whether the caller's context was canceled
func (e *NetworkError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// StatusError is a response outside 2xx
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   []byte
	Detail string
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	return &StatusError{
		Method: method,
		Path:   path,
		Status: status,
		Body:   body,
		Detail: parseDetail(body),
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Kind classifies the status code
func (e *StatusError) Kind() Kind {
	switch {
	case e.Status >= 400 && e.Status < 500:
		return KindClient
	case e.Status >= 500 && e.Status < 600:
		return KindServer
	default:
		return KindUnexpected
	}
}

// LogAttrs returns structured attributes for the logger
func (e *StatusError) LogAttrs() []any {
	attrs := []any{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"kind", e.Kind().String(),
	}
	if e.Detail != "" {
		attrs = append(attrs, "detail", e.Detail)
	}
	return attrs
}

// DecodeError is a 2xx response whose body could not be decoded
type DecodeError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: failed to decode %d response: %v", e.Method, e.Path, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsUnauthorized reports a 401 response
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a 403 response
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// IsNotFound reports a 404 response
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsClientError reports a 4xx response
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Kind() == KindClient
}

// IsServerError reports a 5xx response
func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Kind() == KindServer
}

// IsNetworkError reports that no response was received
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationIssue struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// parseDetail extracts a human readable message from an error body.
// FastAPI sends {"detail": "..."} or, for validation failures, a list of
// {"loc": [...], "msg": "..."}.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		var issues []validationIssue
		if err := json.Unmarshal(eb.Detail, &issues); err == nil && len(issues) > 0 {
			msgs := make([]string, 0, len(issues))
			for _, is := range issues {
				if field := issueField(is.Loc); field != "" {
					msgs = append(msgs, field+": "+is.Msg)
				} else {
					msgs = append(msgs, is.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}

func issueField(loc []interface{}) string {
	if len(loc) == 0 {
		return ""
	}
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		if s, ok := p.(string); ok && s == "body" {
			continue
		}
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}
