package domain

import (
	"strings"
	"time"
)

// UserInfo carries the profile claims issued by the identity provider.
type UserInfo struct {
	Subject           string `json:"sub,omitempty"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// DefaultDisplayName is shown when no profile claim is usable.
const DefaultDisplayName = "Usuario"

// DisplayName picks the friendliest available name.
func (u UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.GivenName != "" || u.FamilyName != "" {
		return strings.TrimSpace(u.GivenName + " " + u.FamilyName)
	}
	if u.PreferredUsername != "" {
		return u.PreferredUsername
	}
	if u.Email != "" {
		local, _, _ := strings.Cut(u.Email, "@")
		return local
	}
	return DefaultDisplayName
}

// Session is a logged-in browser session backed by identity provider tokens.
type Session struct {
	ID           string    `json:"id"`
	User         UserInfo  `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}
