// Package auth implements federated login and stateless session management
// for the taskolotl backend: resolving an OAuth provider profile to a local
// user account, issuing access/refresh token pairs, and exchanging refresh
// tokens for new pairs.
//
// The package owns no persistence. It consumes a UserStore for account
// lookups and writes and a StateStore for one-time CSRF state tokens; the
// token cryptography lives in pkg/jwt.
//
// # Architecture
//
//   • Resolver – finds or creates the account for a provider profile,
//     linking by provider subject first, then by email. The first-login race
//     (two concurrent creates for the same identity) is recovered by a
//     single retry after the store reports ErrIdentityConflict.
//   • Issuer – mints token pairs; access tokens carry email and permission
//     claims, refresh tokens carry only the subject.
//   • Refresher – validates a refresh token (type check included) and mints
//     a fresh pair. Rotation is implicit: no revocation list exists, so the
//     previous refresh token remains valid until its natural expiry.
//   • OAuthService + ProviderAdapter – the provider-agnostic login flow and
//     the Google adapter built on golang.org/x/oauth2.
//   • Handler – the HTTP surface: /login/google, /auth/refresh, /auth/me,
//     /auth/status.
//
// Sentinel errors (ErrInvalidCredential, ErrIdentityConflict, ...) are
// matched with errors.Is throughout.
package auth
