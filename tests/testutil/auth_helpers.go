package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/havenline/vent-api/config"
	"github.com/stretchr/testify/require"
)

// TokenOptions tweaks the claims GenerateToken signs.
type TokenOptions struct {
	Role        string
	Scope       string
	Permissions []string
	TTL         time.Duration
}

// GenerateToken signs an HS256 token for subject that EnsureValidToken
// accepts under cfg.
func GenerateToken(t *testing.T, cfg *config.Config, subject string, opts TokenOptions) string {
	t.Helper()

	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": cfg.JWTIssuer,
		"aud": []string{cfg.JWTAudience},
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if opts.Role != "" {
		claims["role"] = opts.Role
	}
	if opts.Scope != "" {
		claims["scope"] = opts.Scope
	}
	if len(opts.Permissions) > 0 {
		claims["permissions"] = opts.Permissions
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err, "Failed to sign test token")
	return token
}

// BearerHeader formats token for the Authorization header.
func BearerHeader(token string) string {
	return "Bearer " + token
}
