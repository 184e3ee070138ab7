package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JWT header constants required by RFC 7519
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256" // HMAC-SHA256 chosen for security/performance balance
)

// minKeyBytes is the minimum signing key length (256 bits) required for HS256.
const minKeyBytes = 32

// TokenType discriminates access tokens from refresh tokens. A token of one
// type must never be accepted where the other is required.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Header represents the JWT header as defined in RFC 7515
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the claim set carried by taskolotl tokens. Required fields are
// typed out explicitly rather than kept in an open map so that the token type
// and subject stay compile-time safe. Email and Permission are the only
// optional extensions and are present on access tokens only.
type Claims struct {
	ID         string    `json:"jti"`
	Subject    string    `json:"sub"`
	Issuer     string    `json:"iss"`
	TokenType  TokenType `json:"type"`
	IssuedAt   int64     `json:"iat"`
	ExpiresAt  int64     `json:"exp"`
	Email      string    `json:"email,omitempty"`
	Permission string    `json:"permission,omitempty"`
}

// Valid checks the expiry claim against current time.
func (c Claims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Service encodes and decodes signed tokens using HMAC-SHA256. The signing
// key and issuer are fixed at construction and safe to share across
// goroutines; the service holds no other state.
type Service struct {
	signingKey []byte
	issuer     string
}

// New derives the signing key from the configured secret and returns a codec
// bound to it. The secret is base64-decoded when possible, otherwise its raw
// bytes are used; either way it must yield at least 256 bits of key material.
// A short or missing secret is a fatal configuration error, not something to
// detect per request.
func New(secret, issuer string) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}
	if len(key) < minKeyBytes {
		return nil, ErrWeakSigningKey
	}

	return &Service{signingKey: key, issuer: issuer}, nil
}

// Encode serializes the claim set into a signed compact token. The issuer,
// issued-at timestamp, and token ID are stamped unconditionally; the caller
// supplies subject, token type, expiry, and any optional claims.
func (s *Service) Encode(claims Claims) (string, error) {
	switch claims.TokenType {
	case TokenTypeAccess, TokenTypeRefresh:
	default:
		return "", ErrMissingTokenType
	}

	claims.Issuer = s.issuer
	claims.IssuedAt = time.Now().Unix()
	claims.ID = uuid.NewString()

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	// Build JWT payload: base64url(header).base64url(claims)
	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Decode verifies the signature and structural validity of a token and
// returns its claim set. It rejects mis-signed, malformed, and expired
// tokens. It deliberately does NOT check the token type: the expected type
// differs by call site (verifier wants access, refresh wants refresh), so
// that check belongs to the caller.
func (s *Service) Decode(tokenString string) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	// Verify signature using constant-time comparison to prevent timing attacks
	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: undecodable header", ErrInvalidToken)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed header", ErrInvalidToken)
	}

	// Reject tokens using unexpected algorithms to prevent algorithm confusion attacks
	if header.Algorithm != HeaderAlgorithm {
		return Claims{}, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: undecodable claims", ErrInvalidToken)
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}

	if err := claims.Valid(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// sign creates an HMAC-SHA256 signature for the given payload.
// Returns base64url-encoded signature as required by RFC 7515.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes data using base64url encoding without padding.
// Padding removal is required by RFC 7515 for JWT tokens.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode decodes base64url-encoded data without padding.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
