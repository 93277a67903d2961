package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/loan-portal/internal/domain"
)

// TokenManager issues and validates the session tokens stored in the browser cookie.
type TokenManager struct {
	secret []byte
	issuer string
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// Claims describes the session token payload.
type Claims struct {
	SessionID         string `json:"sid"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// User returns the profile carried by the token.
func (c *Claims) User() domain.UserInfo {
	return domain.UserInfo{
		Subject:           c.Subject,
		Name:              c.Name,
		GivenName:         c.GivenName,
		FamilyName:        c.FamilyName,
		Email:             c.Email,
		PreferredUsername: c.PreferredUsername,
	}
}

// GenerateToken signs a token for the session; it expires with the session.
func (tm *TokenManager) GenerateToken(session *domain.Session) (string, error) {
	claims := &Claims{
		SessionID:         session.ID,
		Name:              session.User.Name,
		GivenName:         session.User.GivenName,
		FamilyName:        session.User.FamilyName,
		Email:             session.User.Email,
		PreferredUsername: session.User.PreferredUsername,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   session.User.Subject,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
