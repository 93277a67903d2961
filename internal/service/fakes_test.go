package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/repository"
)

type fakeCustomerRepo struct {
	customers []domain.Customer
	gets      int
	err       error
}

func (f *fakeCustomerRepo) List(_ context.Context, limit, offset int) ([]domain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.customers) {
		return []domain.Customer{}, nil
	}
	end := offset + limit
	if end > len(f.customers) {
		end = len(f.customers)
	}
	return f.customers[offset:end], nil
}

func (f *fakeCustomerRepo) Count(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.customers)), nil
}

func (f *fakeCustomerRepo) GetByIdentification(_ context.Context, identification string) (*domain.Customer, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.customers {
		if f.customers[i].Identification == identification {
			c := f.customers[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCache struct {
	items  map[string]domain.Customer
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]domain.Customer{}}
}

func (f *fakeCache) Get(_ context.Context, identification string) (*domain.Customer, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	c, ok := f.items[identification]
	if !ok {
		return nil, false, nil
	}
	return &c, true, nil
}

func (f *fakeCache) Set(_ context.Context, customer *domain.Customer) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.items[customer.Identification] = *customer
	return nil
}

type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	createErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*domain.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeProvider struct {
	tokens       *auth.TokenResponse
	err          error
	lastCode     string
	lastRedirect string
}

func (f *fakeProvider) AuthorizationURL(redirectURI, state string) string {
	return "https://sso.example.com/auth?redirect_uri=" + redirectURI + "&state=" + state
}

func (f *fakeProvider) LogoutURL(postLogoutRedirectURI string) string {
	return "https://sso.example.com/logout?post_logout_redirect_uri=" + postLogoutRedirectURI
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code, redirectURI string) (*auth.TokenResponse, error) {
	f.lastCode = code
	f.lastRedirect = redirectURI
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, e)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.published))
	for _, e := range r.published {
		out = append(out, e.Type)
	}
	return out
}

var errBackend = errors.New("backend unavailable")

func seedCustomers() []domain.Customer {
	return []domain.Customer{
		{Identification: "1710034065", FirstName: "María", LastName: "González", CustomerType: "PERSONA_NATURAL", CreditScore: 780, RiskLabel: "BAJO"},
		{Identification: "0923456781", FirstName: "Carlos", LastName: "Ramírez", CustomerType: "PERSONA_NATURAL", CreditScore: 640, RiskLabel: "MEDIO"},
		{Identification: "1102345678", FirstName: "Lucía", LastName: "Fernández", CustomerType: "PERSONA_NATURAL", CreditScore: 455, RiskLabel: "ALTO"},
		{Identification: "0601234567", FirstName: "Jorge", LastName: "Castillo", CustomerType: "PERSONA_NATURAL", CreditScore: 620, RiskLabel: "CRITICO"},
	}
}
