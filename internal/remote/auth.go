package remote

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client learns from the API token without verifying
// the signature. The backend validates; this only feeds diagnostics.
type TokenInfo struct {
	Role      string
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed at the given instant.
// Tokens without an exp claim never expire.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// InspectToken parses the API token claims without signature verification.
func InspectToken(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, errors.New("remote: empty token")
	}

	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{Role: claims.Role, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
