package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-portal/internal/api/dto"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/service"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

// CustomerReader is the read side of the customer service.
type CustomerReader interface {
	ListCustomers(ctx context.Context, page, size int) (*service.CustomerPage, error)
	GetCustomer(ctx context.Context, identification string) (*domain.Customer, error)
}

// CustomersHandler serves customer lookups.
type CustomersHandler struct {
	customers CustomerReader
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers CustomerReader) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// List GET /api/v1/customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", service.DefaultPageSize)
	if err != nil {
		return err
	}

	result, err := h.customers.ListCustomers(c.UserContext(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerPageResponse(result.Customers, result.Page, result.Size, result.TotalElements, result.TotalPages))
}

// Get GET /api/v1/customers/identification/:identification.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.customers.GetCustomer(c.UserContext(), c.Params("identification"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerResponse(*customer))
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid paging parameters", map[string]any{key: "must be an integer"})
	}
	return val, nil
}
