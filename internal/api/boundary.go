package api

import "context"

// Boundaries on which an unauthenticated response must not redirect the
// user back to login.
const (
	BoundaryLogin  = "login"
	BoundarySignup = "signup"
)

type boundaryKey struct{}

// WithBoundary records the name of the screen or command issuing requests
func WithBoundary(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, boundaryKey{}, name)
}

// BoundaryFromContext returns the name set by WithBoundary, or ""
func BoundaryFromContext(ctx context.Context) string {
	name, _ := ctx.Value(boundaryKey{}).(string)
	return name
}

// IsAuthBoundary reports whether name is the login or signup boundary
func IsAuthBoundary(name string) bool {
	return name == BoundaryLogin || name == BoundarySignup
}
