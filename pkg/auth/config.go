package auth

import "time"

// TokenConfig holds the signing and lifetime settings for issued tokens.
// The access TTL is short-lived since access tokens cannot be revoked; the
// refresh TTL bounds how long a session can renew itself without a fresh
// federated login.
type TokenConfig struct {
	Secret          string        `env:"JWT_SECRET,required"`                          // base64 or raw bytes, at least 256 bits
	Issuer          string        `env:"JWT_ISSUER" envDefault:"https://taskolotl.com"` // iss claim on every issued token
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

// GoogleOAuthConfig holds configuration for the Google OAuth provider.
type GoogleOAuthConfig struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
	StateTTL     time.Duration `env:"GOOGLE_OAUTH_STATE_TTL" envDefault:"10m"`
	VerifiedOnly bool          `env:"GOOGLE_OAUTH_VERIFIED_ONLY" envDefault:"true"`
}
