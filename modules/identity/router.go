// Package identity composes the identity endpoints into a mountable router.
package identity

import (
	"github.com/go-chi/chi/v5"

	"github.com/saunderscox/taskolotl/pkg/auth"
	"github.com/saunderscox/taskolotl/pkg/jwt"
)

// Router wires the identity HTTP surface. The access-token verifier is
// expected to run earlier in the middleware chain (see cmd/server); only the
// me endpoint adds the authentication gate on top.
//
//	r := chi.NewRouter()
//	r.Use(jwt.Verifier(codec))
//	r.Mount("/", identity.Router(handler))
func Router(h *auth.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/login/google", func(login chi.Router) {
		login.Get("/", h.Login)
		login.Get("/callback", h.Callback)
	})

	r.Route("/auth", func(a chi.Router) {
		a.Post("/refresh", h.Refresh)
		a.Get("/status", h.Status)
		a.With(jwt.RequireIdentity).Get("/me", h.Me)
	})

	return r
}
