package dto

import (
	"time"

	"github.com/spec-kit/loan-portal/internal/domain"
)

// MeResponse describes the signed-in user.
type MeResponse struct {
	User        domain.UserInfo `json:"user"`
	DisplayName string          `json:"display_name"`
	ExpiresAt   time.Time       `json:"expires_at"`
}
