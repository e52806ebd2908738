package ux

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/contract"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// DescribeAPIError turns a transport failure into a coded error with
// suggestions. action names what was attempted, e.g. "update issue 4".
// Errors that are not transport failures are returned unchanged.
func DescribeAPIError(err error, action string) error {
	if err == nil {
		return nil
	}

	var coded *ierrors.Error
	if errors.As(err, &coded) {
		return err
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		if netErr.Canceled() {
			return ierrors.Wrap(ierrors.ErrCodeAPIRequest, action+" canceled", err)
		}
		if netErr.Timeout() {
			return ierrors.Wrap(ierrors.ErrCodeAPIUnreachable, action+" timed out", err).
				WithSuggestion("Raise the timeout with 'issuehub config set api.timeout 1m'")
		}
		return ierrors.NewAPIUnreachableError(netErr.URL, err)
	}

	var violation *contract.ViolationError
	if errors.As(err, &violation) {
		return ierrors.Wrap(ierrors.ErrCodeAPIContract, action+" rejected by the API contract", err).
			WithSuggestion("Disable strict checking with --strict-contract=false if the server is newer than this client")
	}

	var decodeErr *api.DecodeError
	if errors.As(err, &decodeErr) {
		return ierrors.Wrap(ierrors.ErrCodeAPIContract, "unexpected response to "+action, err).
			WithSuggestion("Check that api.url points at an IssueHub API")
	}

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	switch statusErr.Status {
	case http.StatusUnauthorized:
		return ierrors.NewSessionExpiredError(err)
	case http.StatusForbidden:
		return ierrors.NewPermissionDeniedError(action, err)
	case http.StatusNotFound:
		return ierrors.Wrap(ierrors.ErrCodeAPINotFound, action+" failed: not found", err)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return ierrors.Wrap(ierrors.ErrCodeAPIInvalidInput, action+" failed: the server rejected the input", err).
			WithSuggestion("Run with --help to see the expected arguments")
	}
	if statusErr.Kind() == api.KindServer {
		return ierrors.Wrap(ierrors.ErrCodeAPIServerFailure, action+" failed: server error", err).
			WithSuggestion("Retry later; the server reported an internal failure")
	}
	return ierrors.Wrap(ierrors.ErrCodeAPIRequest, action+" failed", err)
}

// EnhanceError adds suggestions to local failures that carry no code
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *ierrors.Error
	if errors.As(err, &coded) {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions of the IssueHub home directory (default ~/.issuehub)")
	}

	if strings.Contains(errMsg, "no such file or directory") && strings.Contains(errMsg, ".yaml") {
		return NewErrorWithSuggestion(err,
			"Run 'issuehub config path' to see which file is read")
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"Check that the IssueHub API is running and that api.url is correct")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(DescribeAPIError(err, context))
	if _, ok := enhanced.(*ierrors.Error); ok {
		return enhanced
	}
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
