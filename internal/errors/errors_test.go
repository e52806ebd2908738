package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotLoggedIn, "test error message")

	if err.Code != ErrCodeNotLoggedIn {
		t.Errorf("expected code %s, got %s", ErrCodeNotLoggedIn, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeConfigInvalid, "invalid config"),
			wantCode: "CONFIG-001",
			wantMsg:  "invalid config",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(ErrCodeLoginFailed, "login failed").
		WithSuggestion("Check your password").
		WithSuggestions("Suggestion 2", "Suggestion 3")

	if len(err.Suggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}
	for _, suggestion := range err.Suggestions {
		if !strings.Contains(errStr, suggestion) {
			t.Errorf("error string should contain suggestion: %s", suggestion)
		}
	}
}

func TestWithDocs(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad").WithDocs("https://example.com/docs")

	if !strings.Contains(err.Error(), "Documentation: https://example.com/docs") {
		t.Errorf("error string should contain docs URL, got: %s", err.Error())
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeSessionExpired, "AUTH"},
		{ErrCodeAPIUnreachable, "API"},
		{ErrCodeConfigUnknownKey, "CONFIG"},
		{ErrCodeFileMarshal, "IO"},
		{ErrorCode("PLAIN"), "PLAIN"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").Category(); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name     string
		err      *Error
		wantCode ErrorCode
		contains string
	}{
		{"not logged in", NewNotLoggedInError(), ErrCodeNotLoggedIn, "issuehub auth login"},
		{"session expired", NewSessionExpiredError(cause), ErrCodeSessionExpired, "boom"},
		{"login failed", NewLoginFailedError("a@b.c", cause), ErrCodeLoginFailed, "a@b.c"},
		{"identity", NewIdentityError(cause), ErrCodeIdentityFailed, "discarded"},
		{"permission", NewPermissionDeniedError("update issue 4", cause), ErrCodePermissionDenied, "update issue 4"},
		{"unreachable", NewAPIUnreachableError("http://x", cause), ErrCodeAPIUnreachable, "http://x"},
		{"not found", NewNotFoundError("issue", 42), ErrCodeAPINotFound, "issue 42 not found"},
		{"invalid input", NewInvalidInputError("status", "done", "open, closed"), ErrCodeAPIInvalidInput, "open, closed"},
		{"config key", NewConfigUnknownKeyError("nope"), ErrCodeConfigUnknownKey, "nope"},
		{"unmarshal", NewFileUnmarshalError("c.yaml", "YAML", cause), ErrCodeFileUnmarshal, "c.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("command failed: %w", NewNotLoggedInError())

	var target *Error
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find *Error in chain")
	}
	if target.Code != ErrCodeNotLoggedIn {
		t.Errorf("unexpected code %s", target.Code)
	}
}
