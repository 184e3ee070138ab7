// Package jwt implements the stateless token layer of the taskolotl backend:
// signing key derivation, an HMAC-SHA256 token codec, and the HTTP middleware
// that turns a bearer access token into a request-scoped verified identity.
//
// Tokens are compact three-part JWS strings (header.claims.signature) carrying
// a typed claim set (Claims). Every token has a type, either access or
// refresh; the codec validates signature and expiry but leaves the type check
// to the call site, because the verifier and the refresh exchanger each expect
// a different type.
//
// # Architecture
//
//   • Service – derives the signing key from the configured secret once at
//     startup and signs/verifies tokens; read-only after construction.
//   • middleware.go – Verifier installs an Identity for valid access tokens
//     and passes everything else through anonymously; RequireIdentity is the
//     authorization gate that turns anonymity into a 401.
//   • context.go – request-scoped Identity plumbing.
//   • errors.go – sentinel error values returned by the package.
//
// # Usage
//
//	svc, err := jwt.New(cfg.Secret, cfg.Issuer)
//	if err != nil {
//	    // fatal: secret missing or shorter than 256 bits
//	}
//
//	token, err := svc.Encode(jwt.Claims{
//	    Subject:   user.ID.String(),
//	    TokenType: jwt.TokenTypeAccess,
//	    ExpiresAt: time.Now().Add(15 * time.Minute).Unix(),
//	})
//
//	claims, err := svc.Decode(token)
//
//	r := chi.NewRouter()
//	r.Use(jwt.Verifier(svc))
//
// Errors such as ErrExpiredToken or ErrInvalidSignature are sentinel
// variables and can be compared using errors.Is.
package jwt
