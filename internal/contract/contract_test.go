package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	v, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1.0", v.Version())

	ops := v.Operations()
	require.NotEmpty(t, ops)
	assert.Contains(t, ops, Operation{Method: "POST", Path: "/auth/login", OperationID: "login"})
	assert.Contains(t, ops, Operation{Method: "PATCH", Path: "/issues/{id}", OperationID: "updateIssue"})

	for i := 1; i < len(ops); i++ {
		prev, cur := ops[i-1], ops[i]
		assert.True(t, prev.Path < cur.Path || (prev.Path == cur.Path && prev.Method < cur.Method),
			"operations not sorted at %d", i)
	}
}

func TestValidate(t *testing.T) {
	v, err := Load()
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantErr     bool
		wantMissing bool
	}{
		{name: "me", method: "GET", path: "/users/me"},
		{name: "issue list with filters", method: "GET", path: "/issues/?skip=10&limit=10&project_id=3&status=open"},
		{name: "bad status filter", method: "GET", path: "/issues/?status=done", wantErr: true},
		{name: "non numeric id", method: "GET", path: "/issues/abc", wantErr: true},
		{
			name:        "login form",
			method:      "POST",
			path:        "/auth/login",
			contentType: "application/x-www-form-urlencoded",
			body:        "username=a%40b.c&password=secret",
		},
		{
			name:        "login form missing password",
			method:      "POST",
			path:        "/auth/login",
			contentType: "application/x-www-form-urlencoded",
			body:        "username=a%40b.c",
			wantErr:     true,
		},
		{
			name:        "patch status",
			method:      "PATCH",
			path:        "/issues/7",
			contentType: "application/json",
			body:        `{"status":"closed"}`,
		},
		{
			name:        "patch unassign",
			method:      "PATCH",
			path:        "/issues/7",
			contentType: "application/json",
			body:        `{"assignee_id":null}`,
		},
		{
			name:        "patch unknown status",
			method:      "PATCH",
			path:        "/issues/7",
			contentType: "application/json",
			body:        `{"status":"done"}`,
			wantErr:     true,
		},
		{
			name:        "empty comment",
			method:      "POST",
			path:        "/comments/issue/7",
			contentType: "application/json",
			body:        `{"body":""}`,
			wantErr:     true,
		},
		{name: "undeclared route", method: "GET", path: "/admin/stats", wantErr: true, wantMissing: true},
		{name: "undeclared method", method: "DELETE", path: "/issues/7", wantErr: true, wantMissing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.body != "" {
				body = []byte(tt.body)
			}
			err := v.Validate(ctx, tt.method, tt.path, tt.contentType, body)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var violation *ViolationError
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tt.method, violation.Method)
			assert.Equal(t, tt.path, violation.Path)
			assert.Equal(t, tt.wantMissing, IsRouteMissing(err))
		})
	}
}

func TestLoadDataRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "[unclosed"},
		{
			name: "no servers",
			data: "openapi: 3.0.3\ninfo: {title: t, version: '1'}\npaths: {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadData([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
