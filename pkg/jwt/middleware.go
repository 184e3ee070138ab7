package jwt

import (
	"net/http"
	"strings"
)

// Verifier returns middleware that runs once per inbound request, before any
// handler. It extracts a bearer token, decodes it, and installs a verified
// identity into the request context. A missing, malformed, mis-signed,
// expired, or wrong-type token degrades the request to anonymous instead of
// rejecting it, so public and optional-auth endpoints keep working; routes
// that require authentication reject later via RequireIdentity.
func Verifier(service *Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := service.Decode(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// A refresh token must never grant API access.
			if claims.TokenType != TokenTypeAccess {
				next.ServeHTTP(w, r)
				return
			}

			ctx := SetIdentity(r.Context(), Identity{Subject: claims.Subject, Claims: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity returns middleware that converts "no verified identity"
// into a 401. Mount it after Verifier on routes that demand authentication.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts a token from an "Authorization: Bearer <token>"
// header per RFC 6750.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}
