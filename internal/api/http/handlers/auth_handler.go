package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-portal/internal/api/dto"
	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/service"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

// LoginFlow is the session side of the auth service.
type LoginFlow interface {
	BeginLogin(redirectURI string) (string, string)
	CompleteLogin(ctx context.Context, code, redirectURI string) (*service.LoginResult, error)
	CurrentUser(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, token, postLogoutRedirectURI string) string
}

// AuthHandler drives the authorization-code login.
type AuthHandler struct {
	flow        LoginFlow
	cookies     *auth.CookieJar
	redirectURI string
}

// NewAuthHandler constructs handler. An empty redirectURI is derived from
// each request's origin.
func NewAuthHandler(flow LoginFlow, cookies *auth.CookieJar, redirectURI string) *AuthHandler {
	return &AuthHandler{flow: flow, cookies: cookies, redirectURI: redirectURI}
}

// Login GET /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	url, state := h.flow.BeginLogin(h.callbackURI(c))
	h.cookies.SetState(c, state)
	return c.Redirect(url, http.StatusFound)
}

// Callback GET /auth/callback. Without a code the browser is sent back to
// the identity provider.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if reason := c.Query("error"); reason != "" {
		return apperrors.NewDomainError("UNAUTHORIZED", "login rejected by identity provider", http.StatusUnauthorized,
			map[string]any{"error": reason, "error_description": c.Query("error_description")})
	}

	code := c.Query("code")
	if code == "" {
		return h.Login(c)
	}

	expected := c.Cookies(auth.StateCookieName)
	h.cookies.ClearState(c)
	if expected == "" || c.Query("state") != expected {
		return apperrors.NewUnauthorized("login state mismatch")
	}

	result, err := h.flow.CompleteLogin(c.UserContext(), code, h.callbackURI(c))
	if err != nil {
		return err
	}
	h.cookies.SetSession(c, result.Token, result.Session.ExpiresAt)
	return c.Redirect("/", http.StatusFound)
}

// Logout GET /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	url := h.flow.Logout(c.UserContext(), h.cookies.SessionToken(c), c.BaseURL())
	h.cookies.ClearAll(c)
	return c.Redirect(url, http.StatusFound)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	session, err := h.flow.CurrentUser(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MeResponse{
		User:        session.User,
		DisplayName: session.User.DisplayName(),
		ExpiresAt:   session.ExpiresAt,
	})
}

func (h *AuthHandler) callbackURI(c *fiber.Ctx) string {
	return auth.ResolveRedirectURI(h.redirectURI, c.Protocol(), c.Hostname())
}
