package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/observability"
	"github.com/spec-kit/loan-portal/internal/repository"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	Customers     []domain.Customer
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

// CustomerService serves customer records, reading through the cache.
type CustomerService struct {
	customers repository.CustomerRepository
	cache     repository.CustomerCache
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// CustomerDependencies bundles collaborators of the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	Cache        repository.CustomerCache
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customers: deps.CustomerRepo,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// ListCustomers returns the requested zero-based page.
func (s *CustomerService) ListCustomers(ctx context.Context, page, size int) (*CustomerPage, error) {
	details := map[string]any{}
	if size < 1 || size > MaxPageSize {
		details["size"] = "must be between 1 and 100"
	}
	switch {
	case page < 0:
		details["page"] = "must be zero or greater"
	case len(details) == 0 && page > math.MaxInt32/size:
		details["page"] = "out of range"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid paging parameters", details)
	}

	total, err := s.customers.Count(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.List(ctx, size, page*size)
	if err != nil {
		return nil, err
	}

	return &CustomerPage{
		Customers:     customers,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// GetCustomer loads a single customer by identification.
func (s *CustomerService) GetCustomer(ctx context.Context, identification string) (*domain.Customer, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, apperrors.NewValidationError("identification required", nil)
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, identification)
		switch {
		case err != nil:
			s.metrics.RecordCacheLookup("error")
			s.logger.Warn("customer cache read failed", zap.String("identification", identification), zap.Error(err))
		case ok:
			s.metrics.RecordCacheLookup("hit")
			return cached, nil
		default:
			s.metrics.RecordCacheLookup("miss")
		}
	}

	customer, err := s.customers.GetByIdentification(ctx, identification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"identification": identification})
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, customer); err != nil {
			s.logger.Warn("customer cache write failed", zap.String("identification", identification), zap.Error(err))
		}
	}
	return customer, nil
}
