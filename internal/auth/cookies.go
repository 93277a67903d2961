package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-portal/internal/config"
)

const (
	// StateCookieName holds the OAuth state between login and callback.
	StateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// providerCookies are set by the identity provider on shared domains.
var providerCookies = []string{
	"refresh_token",
	"KEYCLOAK_IDENTITY",
	"KEYCLOAK_SESSION",
	"AUTH_SESSION_ID",
	"KC_AUTH_SESSION_HASH",
	"KC_RESTART",
}

// CookieJar writes the cookies of the login flow.
type CookieJar struct {
	cfg config.AuthConfig
}

// NewCookieJar constructs a jar.
func NewCookieJar(cfg config.AuthConfig) *CookieJar {
	return &CookieJar{cfg: cfg}
}

// SetSession stores the session token.
func (j *CookieJar) SetSession(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(j.cookie(j.cfg.CookieName, token, expiresAt))
}

// SetState stores the OAuth state for the pending login.
func (j *CookieJar) SetState(c *fiber.Ctx, state string) {
	c.Cookie(j.cookie(StateCookieName, state, time.Now().Add(stateCookieTTL)))
}

// ClearState expires the OAuth state cookie.
func (j *CookieJar) ClearState(c *fiber.Ctx) {
	j.expire(c, StateCookieName)
}

// ClearAll expires the session cookie along with identity provider cookies.
func (j *CookieJar) ClearAll(c *fiber.Ctx) {
	j.expire(c, j.cfg.CookieName)
	for _, name := range providerCookies {
		j.expire(c, name)
	}
}

// SessionToken returns the raw session cookie.
func (j *CookieJar) SessionToken(c *fiber.Ctx) string {
	return c.Cookies(j.cfg.CookieName)
}

func (j *CookieJar) expire(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:    name,
		Path:    "/",
		Domain:  j.cfg.CookieDomain,
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func (j *CookieJar) cookie(name, value string, expiresAt time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   j.cfg.CookieDomain,
		Expires:  expiresAt,
		Secure:   j.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
