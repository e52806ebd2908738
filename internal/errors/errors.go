package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeNotLoggedIn        ErrorCode = "AUTH-001"
	ErrCodeLoginFailed        ErrorCode = "AUTH-002"
	ErrCodeSessionExpired     ErrorCode = "AUTH-003"
	ErrCodeTokenEmpty         ErrorCode = "AUTH-004"
	ErrCodeIdentityFailed     ErrorCode = "AUTH-005"
	ErrCodeSignupFailed       ErrorCode = "AUTH-006"
	ErrCodePermissionDenied   ErrorCode = "AUTH-007"
	ErrCodeCredentialsMissing ErrorCode = "AUTH-008"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest       ErrorCode = "API-001"
	ErrCodeAPINotFound      ErrorCode = "API-002"
	ErrCodeAPIUnreachable   ErrorCode = "API-003"
	ErrCodeAPIContract      ErrorCode = "API-004"
	ErrCodeAPIInvalidInput  ErrorCode = "API-005"
	ErrCodeAPIServerFailure ErrorCode = "API-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid    ErrorCode = "CONFIG-001"
	ErrCodeConfigUnknownKey ErrorCode = "CONFIG-002"
	ErrCodeConfigLoad       ErrorCode = "CONFIG-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// docsBase is the root of the user documentation
const docsBase = "https://github.com/felixgeelhaar/issuehub"

// Error represents an enhanced error with code, suggestions, and documentation
type Error struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the code family, e.g. "AUTH" for "AUTH-003"
func (e *Error) Category() string {
	code := string(e.Code)
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewNotLoggedInError is returned by commands that need a session
func NewNotLoggedInError() *Error {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'issuehub auth login' to authenticate").
		WithSuggestion("Run 'issuehub auth signup' to create an account").
		WithDocs(docsBase + "#authentication")
}

// NewSessionExpiredError is returned when the server rejected the stored token
func NewSessionExpiredError(cause error) *Error {
	return Wrap(ErrCodeSessionExpired, "session expired or invalid", cause).
		WithSuggestion("Run 'issuehub auth login' to sign in again").
		WithDocs(docsBase + "#authentication")
}

// NewLoginFailedError wraps a failed credential exchange
func NewLoginFailedError(email string, cause error) *Error {
	return Wrap(ErrCodeLoginFailed, fmt.Sprintf("login failed for %s", email), cause).
		WithSuggestion("Check your email and password").
		WithSuggestion("Verify the API address with 'issuehub config get api.url'")
}

// NewIdentityError wraps a failed GET /users/me after a token was issued
func NewIdentityError(cause error) *Error {
	return Wrap(ErrCodeIdentityFailed, "could not resolve the signed-in user", cause).
		WithSuggestion("The token was discarded; run 'issuehub auth login' again")
}

// NewPermissionDeniedError is returned on 403 responses
func NewPermissionDeniedError(action string, cause error) *Error {
	return Wrap(ErrCodePermissionDenied, fmt.Sprintf("not allowed to %s", action), cause).
		WithSuggestion("Only the issue reporter or a project maintainer can edit an issue").
		WithSuggestion("Check your role with 'issuehub project membership <project-id>'")
}

// NewAPIUnreachableError wraps transport-level failures
func NewAPIUnreachableError(baseURL string, cause error) *Error {
	return Wrap(ErrCodeAPIUnreachable, fmt.Sprintf("cannot reach API at %s", baseURL), cause).
		WithSuggestion("Check that the IssueHub API server is running").
		WithSuggestion("Set the address with --api-url or ISSUEHUB_API_URL")
}

// NewNotFoundError is returned on 404 responses
func NewNotFoundError(kind string, id int64) *Error {
	return New(ErrCodeAPINotFound, fmt.Sprintf("%s %d not found", kind, id)).
		WithSuggestion(fmt.Sprintf("List available items with 'issuehub %s list'", kind))
}

// NewInvalidInputError reports a bad flag or argument value
func NewInvalidInputError(field string, value interface{}, valid string) *Error {
	e := New(ErrCodeAPIInvalidInput, fmt.Sprintf("invalid value for %s: %v", field, value))
	if valid != "" {
		e.WithSuggestion(fmt.Sprintf("Valid values: %s", valid))
	}
	return e.WithSuggestion("Run with --help to see all available options")
}

// NewConfigUnknownKeyError reports an unknown dot-notation config key
func NewConfigUnknownKeyError(key string) *Error {
	return New(ErrCodeConfigUnknownKey, fmt.Sprintf("unknown configuration key: %s", key)).
		WithSuggestion("Run 'issuehub config view' to see available keys")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *Error {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
