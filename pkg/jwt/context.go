package jwt

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

// String returns the name of the context key.
func (c contextKey) String() string { return c.name }

var identityContextKey = &contextKey{name: "jwt_identity"}

// Identity is the verified identity attached to a request after its access
// token passed signature, expiry, and type checks. It lives for the duration
// of one request and carries everything downstream authorization needs.
type Identity struct {
	Subject string // user ID, as carried in the token's sub claim
	Claims  Claims
}

// SetIdentity attaches a verified identity to the context.
func SetIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the verified identity from the context.
// The second return value is false for anonymous requests, which is a
// normal outcome rather than an error.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
