package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the displayable part of a bearer token.
type TokenInfo struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Subject   string
	UserID    string
	Email     string
}

// Expired reports whether the token carries an expiry before now.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// ParseTokenInfo reads the claims of a JWT without checking its signature.
// The backend is the only party that can verify it; this is for display.
func ParseTokenInfo(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	info.Email, _ = claims["email"].(string)

	switch id := claims["userId"].(type) {
	case string:
		info.UserID = id
	case float64:
		info.UserID = fmt.Sprintf("%.0f", id)
	}

	return info, nil
}
