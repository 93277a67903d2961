package auth

import (
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/loan-portal/internal/domain"
)

type providerClaims struct {
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// UserInfoFromToken reads the profile claims of a token issued by the
// identity provider. The signature is not checked: the token was received
// directly from the token endpoint.
func UserInfoFromToken(raw string) (domain.UserInfo, error) {
	claims := &providerClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return domain.UserInfo{}, err
	}
	return domain.UserInfo{
		Subject:           claims.Subject,
		Name:              claims.Name,
		GivenName:         claims.GivenName,
		FamilyName:        claims.FamilyName,
		Email:             claims.Email,
		PreferredUsername: claims.PreferredUsername,
	}, nil
}
