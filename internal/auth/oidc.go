package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-portal/internal/config"
)

const defaultScope = "openid profile email"

// ErrTokenExchange is returned when the identity provider rejects a code.
var ErrTokenExchange = errors.New("failed to exchange code for token")

// TokenResponse is the token endpoint reply of the authorization-code grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// OIDCClient talks to the identity provider realm.
type OIDCClient struct {
	cfg     config.OIDCConfig
	timeout time.Duration
}

// NewOIDCClient constructs a client.
func NewOIDCClient(cfg config.OIDCConfig) *OIDCClient {
	return &OIDCClient{cfg: cfg, timeout: cfg.HTTPTimeout()}
}

// AuthorizationURL builds the URL the browser is sent to for login.
func (o *OIDCClient) AuthorizationURL(redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", o.cfg.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", defaultScope)
	if state != "" {
		params.Set("state", state)
	}
	return o.cfg.AuthorizationEndpoint + "?" + params.Encode()
}

// LogoutURL builds the realm end-session URL.
func (o *OIDCClient) LogoutURL(postLogoutRedirectURI string) string {
	params := url.Values{}
	params.Set("client_id", o.cfg.ClientID)
	params.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	return strings.TrimRight(o.cfg.IssuerURL, "/") + "/protocol/openid-connect/logout?" + params.Encode()
}

// ExchangeCode redeems an authorization code at the token endpoint.
func (o *OIDCClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := o.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("grant_type", "authorization_code")
	args.Set("code", code)
	args.Set("client_id", o.cfg.ClientID)
	args.Set("redirect_uri", redirectURI)

	agent := fiber.Post(o.cfg.TokenEndpoint)
	agent.Timeout(timeout)
	agent.Form(args)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("token endpoint: %w", errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d %s", ErrTokenExchange, status, strings.TrimSpace(string(body)))
	}

	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carries no access_token", ErrTokenExchange)
	}
	return &resp, nil
}

// ResolveRedirectURI returns the configured redirect URI, or derives one
// from the request origin. Local hosts are always addressed over plain http.
func ResolveRedirectURI(configured, scheme, host string) string {
	if uri := strings.TrimSpace(configured); uri != "" {
		return uri
	}
	if host == "" {
		return ""
	}
	if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + host + "/auth/callback"
}
