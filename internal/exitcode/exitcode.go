package exitcode

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/issuehub/internal/api"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage, configuration or input
	UsageError = 2

	// PermissionDenied indicates the server refused the action (403)
	PermissionDenied = 3

	// NotFound indicates the requested resource does not exist (404)
	NotFound = 4

	// AuthError indicates a missing, rejected or expired session
	AuthError = 5

	// NetworkError indicates the API could not be reached
	NetworkError = 6

	// ServerError indicates the API failed with a 5xx response
	ServerError = 7

	// Interrupted indicates the user canceled with Ctrl+C
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode maps an error to an exit code. Coded errors and
// transport errors are matched by type; anything else falls back to
// message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var coded *ierrors.Error
	if errors.As(err, &coded) {
		if code, ok := fromErrorCode(coded.Code); ok {
			return code
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return NetworkError
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fromStatus(statusErr.Status)
	}

	return fromMessage(strings.ToLower(err.Error()))
}

func fromErrorCode(code ierrors.ErrorCode) (int, bool) {
	switch code {
	case ierrors.ErrCodePermissionDenied:
		return PermissionDenied, true
	case ierrors.ErrCodeAPINotFound:
		return NotFound, true
	case ierrors.ErrCodeAPIUnreachable:
		return NetworkError, true
	case ierrors.ErrCodeAPIServerFailure:
		return ServerError, true
	case ierrors.ErrCodeAPIInvalidInput, ierrors.ErrCodeAPIContract:
		return UsageError, true
	}

	switch (&ierrors.Error{Code: code}).Category() {
	case "AUTH":
		return AuthError, true
	case "CONFIG":
		return UsageError, true
	}
	return 0, false
}

func fromStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized:
		return AuthError
	case status == http.StatusForbidden:
		return PermissionDenied
	case status == http.StatusNotFound:
		return NotFound
	case status >= 400 && status < 500:
		return UsageError
	default:
		return ServerError
	}
}

func fromMessage(errMsg string) int {
	// Authentication errors
	if strings.Contains(errMsg, "not logged in") || strings.Contains(errMsg, "unauthorized") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors reported by cobra
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") {
		return UsageError
	}
	if strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case PermissionDenied:
		return "Permission denied"
	case NotFound:
		return "Not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case ServerError:
		return "Server error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
