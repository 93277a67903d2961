package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-portal/internal/api/dto"
	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/service"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

// LoanEvaluator runs loan applications.
type LoanEvaluator interface {
	Evaluate(ctx context.Context, actor events.Actor, identification string, app domain.LoanApplication) (*service.LoanEvaluation, error)
}

// LoansHandler exposes loan evaluation.
type LoansHandler struct {
	loans LoanEvaluator
}

// NewLoansHandler constructs handler.
func NewLoansHandler(loans LoanEvaluator) *LoansHandler {
	return &LoansHandler{loans: loans}
}

// Evaluate POST /api/v1/customers/identification/:identification/loan-evaluations.
func (h *LoansHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.LoanEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var actor events.Actor
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = events.Actor{Subject: principal.User.Subject, SessionID: principal.SessionID}
	}

	result, err := h.loans.Evaluate(c.UserContext(), actor, c.Params("identification"), req.Application())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLoanDecisionResponse(result.Decision))
}
