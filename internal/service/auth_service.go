package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/config"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/repository"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

// IdentityProvider is the authorization-code side of the identity provider.
type IdentityProvider interface {
	AuthorizationURL(redirectURI, state string) string
	LogoutURL(postLogoutRedirectURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (*auth.TokenResponse, error)
}

// AuthService coordinates the login, session and logout flows.
type AuthService struct {
	provider   IdentityProvider
	sessions   repository.SessionRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Provider    IdentityProvider
	SessionRepo repository.SessionRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// LoginResult is what the callback hands back to the browser.
type LoginResult struct {
	Session *domain.Session
	Token   string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		provider:   deps.Provider,
		sessions:   deps.SessionRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.SessionSecret, cfg.App.Name),
		dispatcher: deps.Dispatcher,
		sessionTTL: cfg.Auth.SessionTTL(),
		logger:     logger,
		now:        time.Now,
	}
}

// TokenManager exposes the session token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// BeginLogin returns the identity provider URL and the state to remember.
func (s *AuthService) BeginLogin(redirectURI string) (string, string) {
	state := uuid.NewString()
	return s.provider.AuthorizationURL(redirectURI, state), state
}

// CompleteLogin redeems the code, opens a session and signs its token.
func (s *AuthService) CompleteLogin(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	tokens, err := s.provider.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExchange) {
			return nil, apperrors.NewUnauthorized("authorization code rejected by identity provider")
		}
		return nil, apperrors.NewUpstreamError("identity provider unavailable", err)
	}

	profileToken := tokens.IDToken
	if profileToken == "" {
		profileToken = tokens.AccessToken
	}
	user, err := auth.UserInfoFromToken(profileToken)
	if err != nil {
		s.logger.Warn("identity provider token carries no readable profile", zap.Error(err))
	}

	now := s.now()
	ttl := s.sessionTTL
	if tokens.ExpiresIn > 0 {
		ttl = time.Duration(tokens.ExpiresIn) * time.Second
	}
	session := &domain.Session{
		ID:           uuid.NewString(),
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.tokenMgr.GenerateToken(session)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, session)
	return &LoginResult{Session: session, Token: token}, nil
}

// CurrentUser returns the profile of an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperrors.NewUnauthorized("session expired")
		}
		return nil, err
	}
	return session, nil
}

// Logout revokes the session behind token and returns the identity provider
// logout URL. Unknown or invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token, postLogoutRedirectURI string) string {
	if token != "" {
		if claims, err := s.tokenMgr.ParseToken(token); err == nil {
			session, getErr := s.sessions.Get(ctx, claims.SessionID)
			if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
				s.logger.Warn("failed to delete session", zap.String("session_id", claims.SessionID), zap.Error(err))
			}
			if getErr == nil {
				s.publish(ctx, events.EventUserLoggedOut, session)
			}
		}
	}
	return s.provider.LogoutURL(postLogoutRedirectURI)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, session *domain.Session) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{Subject: session.User.Subject, SessionID: session.ID},
		Timestamp: s.now().UTC(),
		Payload: events.SessionPayload{
			DisplayName: session.User.DisplayName(),
			Email:       session.User.Email,
		},
	})
}
