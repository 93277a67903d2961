package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/api/http/handlers"
	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/config"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/observability"
	"github.com/spec-kit/loan-portal/internal/repository"
	"github.com/spec-kit/loan-portal/internal/service"
)

type stubCustomers struct {
	customers []domain.Customer
}

func (s *stubCustomers) List(_ context.Context, limit, offset int) ([]domain.Customer, error) {
	if offset >= len(s.customers) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.customers) {
		end = len(s.customers)
	}
	return s.customers[offset:end], nil
}

func (s *stubCustomers) Count(context.Context) (int64, error) {
	return int64(len(s.customers)), nil
}

func (s *stubCustomers) GetByIdentification(_ context.Context, id string) (*domain.Customer, error) {
	for i := range s.customers {
		if s.customers[i].Identification == id {
			c := s.customers[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func (s *stubSessions) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *stubSessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type stubProvider struct {
	idToken string
}

func (p *stubProvider) AuthorizationURL(redirectURI, state string) string {
	return "https://sso.example.com/auth?" + url.Values{"redirect_uri": {redirectURI}, "state": {state}}.Encode()
}

func (p *stubProvider) LogoutURL(postLogoutRedirectURI string) string {
	return "https://sso.example.com/logout?" + url.Values{"post_logout_redirect_uri": {postLogoutRedirectURI}}.Encode()
}

func (p *stubProvider) ExchangeCode(_ context.Context, code, _ string) (*auth.TokenResponse, error) {
	if code != "good-code" {
		return nil, auth.ErrTokenExchange
	}
	return &auth.TokenResponse{AccessToken: p.idToken, IDToken: p.idToken, ExpiresIn: 300}, nil
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type RouterSuite struct {
	suite.Suite
	app      *fiber.App
	sessions *stubSessions
	authSvc  *service.AuthService
	metrics  *observability.Metrics
	redisUp  bool
}

func (s *RouterSuite) SetupTest() {
	cfg := config.Config{
		App:  config.AppConfig{Name: "loan-portal", Version: "test"},
		Auth: config.AuthConfig{SessionSecret: "router-secret", CookieName: "jwt"},
	}
	logger := zap.NewNop()
	s.metrics = observability.NewMetrics()
	s.sessions = &stubSessions{sessions: map[string]*domain.Session{}}
	s.redisUp = true

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "kc-1",
		"given_name":  "Ana",
		"family_name": "Pérez",
		"email":       "ana@bank.example",
	}).SignedString([]byte("idp"))
	s.Require().NoError(err)

	customers := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: &stubCustomers{customers: []domain.Customer{
			{Identification: "1710034065", FirstName: "María", LastName: "González", CustomerType: "PERSONA_NATURAL", CreditScore: 780, RiskLabel: "BAJO"},
			{Identification: "0923456781", FirstName: "Carlos", LastName: "Ramírez", CustomerType: "PERSONA_NATURAL", CreditScore: 640, RiskLabel: "MEDIO"},
			{Identification: "1102345678", FirstName: "Lucía", LastName: "Fernández", CustomerType: "PERSONA_NATURAL", CreditScore: 455, RiskLabel: "ALTO"},
		}},
		Metrics: s.metrics,
	})
	dispatcher := events.NewInMemoryDispatcher(logger)
	loans := service.NewLoanService(service.LoanDependencies{Customers: customers, Dispatcher: dispatcher, Metrics: s.metrics})
	s.authSvc = service.NewAuthService(cfg, service.AuthDependencies{
		Provider:    &stubProvider{idToken: idToken},
		SessionRepo: s.sessions,
		Dispatcher:  dispatcher,
	})

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, s.metrics, 0)
	RegisterRoutes(s.app, RouteConfig{
		Health: handlers.NewHealthHandler("loan-portal", "test",
			handlers.Dependency{Name: "postgres", Pinger: pingFunc(func(context.Context) error { return nil })},
			handlers.Dependency{Name: "redis", Pinger: pingFunc(func(context.Context) error {
				if !s.redisUp {
					return errors.New("connection refused")
				}
				return nil
			})},
		),
		Auth:           handlers.NewAuthHandler(s.authSvc, auth.NewCookieJar(cfg.Auth), ""),
		Customers:      handlers.NewCustomersHandler(customers),
		Loans:          handlers.NewLoansHandler(loans),
		AuthMiddleware: auth.NewAuthMiddleware(s.authSvc.TokenManager(), s.sessions, "jwt"),
		Metrics:        s.metrics,
		LoanLimit:      LoanEvaluationLimiter(3),
	})
}

func (s *RouterSuite) login() string {
	result, err := s.authSvc.CompleteLogin(context.Background(), "good-code", "http://example.com/auth/callback")
	s.Require().NoError(err)
	return result.Token
}

func (s *RouterSuite) do(req *nethttp.Request, token string) (*nethttp.Response, map[string]any) {
	if token != "" {
		req.AddCookie(&nethttp.Cookie{Name: "jwt", Value: token})
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	body := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		s.Require().NoError(json.Unmarshal(raw, &body))
	}
	return resp, body
}

func (s *RouterSuite) evaluate(token, id, payload string) (*nethttp.Response, map[string]any) {
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/customers/identification/"+id+"/loan-evaluations", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(req, token)
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func (s *RouterSuite) TestHealth() {
	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/health/live", nil), "")
	s.Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal("loan-portal", body["service"])

	resp, body = s.do(httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil), "")
	s.Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal("ready", body["status"])

	s.redisUp = false
	resp, body = s.do(httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil), "")
	s.Equal(nethttp.StatusServiceUnavailable, resp.StatusCode)
	s.Equal("DEPENDENCY_UNAVAILABLE", errorCode(body))
}

func (s *RouterSuite) TestCustomersRequireSession() {
	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers", nil), "")
	s.Equal(nethttp.StatusUnauthorized, resp.StatusCode)
	s.Equal("UNAUTHORIZED", errorCode(body))
}

func (s *RouterSuite) TestListCustomers() {
	token := s.login()

	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers?page=1&size=2", nil), token)
	s.Require().Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal(float64(3), body["totalElements"])
	s.Equal(float64(2), body["totalPages"])

	content, ok := body["content"].([]any)
	s.Require().True(ok)
	s.Require().Len(content, 1)
	first := content[0].(map[string]any)
	s.Equal("1102345678", first["identificacion"])
	s.Equal("Lucía", first["nombre"])
	s.Equal(float64(455), first["scoreCrediticio"])
	s.Equal("ALTO", first["nivelRiesgo"])
}

func (s *RouterSuite) TestListCustomersRejectsBadPaging() {
	token := s.login()

	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers?size=500", nil), token)
	s.Equal(nethttp.StatusBadRequest, resp.StatusCode)
	s.Equal("VALIDATION_FAILED", errorCode(body))

	resp, _ = s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers?page=first", nil), token)
	s.Equal(nethttp.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestGetCustomer() {
	token := s.login()

	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers/identification/0923456781", nil), token)
	s.Require().Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal("Carlos", body["nombre"])
	s.Equal("Ramírez", body["apellido"])

	resp, body = s.do(httptest.NewRequest(nethttp.MethodGet, "/api/v1/customers/identification/0000000000", nil), token)
	s.Equal(nethttp.StatusNotFound, resp.StatusCode)
	s.Equal("NOT_FOUND", errorCode(body))
}

func (s *RouterSuite) TestEvaluateLoan() {
	token := s.login()

	resp, body := s.evaluate(token, "1710034065", `{"loanAmount":10000,"installments":24,"monthlyIncome":1000}`)
	s.Require().Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal(true, body["approved"])
	s.Equal(true, body["requiresAction"])
	s.Equal("approved_action_required", body["outcome"])

	resp, body = s.evaluate(token, "0923456781", `{"loanAmount":10000,"installments":10,"monthlyIncome":1000}`)
	s.Require().Equal(nethttp.StatusOK, resp.StatusCode)
	s.Equal(false, body["approved"])
	s.Contains(body["reason"], "100.0%")
	s.NotContains(body, "requiresAction")
	s.Equal("rejected", body["outcome"])
}

func (s *RouterSuite) TestEvaluateLoanValidation() {
	token := s.login()

	resp, body := s.evaluate(token, "1710034065", `{"loanAmount":0,"installments":0,"monthlyIncome":1000}`)
	s.Equal(nethttp.StatusBadRequest, resp.StatusCode)
	s.Equal("VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	s.Contains(details, "loanAmount")
	s.Contains(details, "installments")

	resp, _ = s.evaluate(token, "1710034065", `{not json`)
	s.Equal(nethttp.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestEvaluateLoanRateLimited() {
	token := s.login()
	payload := `{"loanAmount":5000,"installments":12,"monthlyIncome":2000}`

	for i := 0; i < 3; i++ {
		resp, _ := s.evaluate(token, "0923456781", payload)
		s.Require().Equal(nethttp.StatusOK, resp.StatusCode)
	}
	resp, body := s.evaluate(token, "0923456781", payload)
	s.Equal(nethttp.StatusTooManyRequests, resp.StatusCode)
	s.Equal("RATE_LIMITED", errorCode(body))
}

func (s *RouterSuite) TestLoginRedirectsToProvider() {
	resp, _ := s.do(httptest.NewRequest(nethttp.MethodGet, "http://example.com/auth/login", nil), "")
	s.Require().Equal(nethttp.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	s.Require().NoError(err)
	s.Equal("sso.example.com", location.Host)
	s.Equal("http://example.com/auth/callback", location.Query().Get("redirect_uri"))

	state := findCookie(resp, auth.StateCookieName)
	s.Require().NotNil(state)
	s.Equal(location.Query().Get("state"), state.Value)
}

func (s *RouterSuite) TestCallbackWithoutCodeRestartsLogin() {
	resp, _ := s.do(httptest.NewRequest(nethttp.MethodGet, "/auth/callback", nil), "")
	s.Equal(nethttp.StatusFound, resp.StatusCode)
	s.True(strings.HasPrefix(resp.Header.Get(fiber.HeaderLocation), "https://sso.example.com/auth?"))
}

func (s *RouterSuite) TestCallbackRejectsStateMismatch() {
	req := httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=good-code&state=forged", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.StateCookieName, Value: "expected"})

	resp, body := s.do(req, "")
	s.Equal(nethttp.StatusUnauthorized, resp.StatusCode)
	s.Equal("UNAUTHORIZED", errorCode(body))
	s.Zero(s.sessions.count())
}

func (s *RouterSuite) TestCallbackOpensSession() {
	req := httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=good-code&state=abc", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.StateCookieName, Value: "abc"})

	resp, _ := s.do(req, "")
	s.Require().Equal(nethttp.StatusFound, resp.StatusCode)
	s.Equal("/", resp.Header.Get(fiber.HeaderLocation))

	session := findCookie(resp, "jwt")
	s.Require().NotNil(session)
	s.True(session.HttpOnly)
	s.Equal(1, s.sessions.count())

	me, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/auth/me", nil), session.Value)
	s.Require().Equal(nethttp.StatusOK, me.StatusCode)
	s.Equal("Ana Pérez", body["display_name"])
}

func (s *RouterSuite) TestCallbackRejectedCode() {
	req := httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=stale&state=abc", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.StateCookieName, Value: "abc"})

	resp, _ := s.do(req, "")
	s.Equal(nethttp.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestLogout() {
	token := s.login()

	resp, _ := s.do(httptest.NewRequest(nethttp.MethodGet, "http://example.com/auth/logout", nil), token)
	s.Require().Equal(nethttp.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	s.Require().NoError(err)
	s.Equal("/logout", location.Path)
	s.Equal("http://example.com", location.Query().Get("post_logout_redirect_uri"))

	for _, name := range []string{"jwt", "refresh_token", "KEYCLOAK_IDENTITY", "KC_RESTART"} {
		cookie := findCookie(resp, name)
		if s.NotNil(cookie, name) {
			s.Empty(cookie.Value, name)
		}
	}
	s.Zero(s.sessions.count())

	me, _ := s.do(httptest.NewRequest(nethttp.MethodGet, "/auth/me", nil), token)
	s.Equal(nethttp.StatusUnauthorized, me.StatusCode)
}

func (s *RouterSuite) TestMetricsAndUnknownRoutes() {
	resp, body := s.do(httptest.NewRequest(nethttp.MethodGet, "/nope", nil), "")
	s.Equal(nethttp.StatusNotFound, resp.StatusCode)
	s.Equal("NOT_FOUND", errorCode(body))

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(nethttp.StatusOK, resp.StatusCode)
	s.Contains(string(raw), "loan_portal_http_requests_total")
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func TestLoanEvaluationLimiterDisabled(t *testing.T) {
	assert.Nil(t, LoanEvaluationLimiter(0))
	require.NotNil(t, LoanEvaluationLimiter(5))
}

func findCookie(resp *nethttp.Response, name string) *nethttp.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
