package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/domain"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/loan"
	"github.com/spec-kit/loan-portal/internal/observability"
	apperrors "github.com/spec-kit/loan-portal/pkg/util/errorutil"
)

// MaxInstallments caps the repayment periods accepted by the portal.
const MaxInstallments = 360

// CustomerLookup resolves customers for evaluation.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, identification string) (*domain.Customer, error)
}

// LoanEvaluation pairs a decision with the customer it was made for.
type LoanEvaluation struct {
	Customer domain.Customer
	Decision domain.LoanDecision
}

// LoanService runs loan applications through the decision rules.
type LoanService struct {
	customers  CustomerLookup
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// LoanDependencies bundles collaborators of the loan service.
type LoanDependencies struct {
	Customers  CustomerLookup
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewLoanService constructs the service.
func NewLoanService(deps LoanDependencies) *LoanService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		customers:  deps.Customers,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ValidateApplication enforces the input bounds of the application form.
// The decision rules themselves accept any numbers.
func ValidateApplication(app domain.LoanApplication) error {
	details := map[string]any{}
	if !(app.LoanAmount > 0) || math.IsInf(app.LoanAmount, 0) {
		details["loanAmount"] = "must be greater than zero"
	}
	if app.Installments < 1 || app.Installments > MaxInstallments {
		details["installments"] = "must be between 1 and 360"
	}
	if !(app.MonthlyIncome > 0) || math.IsInf(app.MonthlyIncome, 0) {
		details["monthlyIncome"] = "must be greater than zero"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid loan application", details)
	}
	return nil
}

// Evaluate validates the application, loads the customer and applies the rules.
func (s *LoanService) Evaluate(ctx context.Context, actor events.Actor, identification string, app domain.LoanApplication) (*LoanEvaluation, error) {
	if err := ValidateApplication(app); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetCustomer(ctx, identification)
	if err != nil {
		return nil, err
	}

	level, err := customer.RiskLevel()
	if err != nil {
		s.logger.Warn("unrecognized risk level, evaluating as high risk",
			zap.String("identification", customer.Identification),
			zap.String("risk_label", customer.RiskLabel))
	}

	decision := loan.Evaluate(*customer, app)
	s.metrics.RecordLoanDecision(string(decision.Outcome()))

	s.publish(ctx, actor, customer, level, app, decision)

	return &LoanEvaluation{Customer: *customer, Decision: decision}, nil
}

func (s *LoanService) publish(ctx context.Context, actor events.Actor, customer *domain.Customer, level domain.RiskLevel, app domain.LoanApplication, decision domain.LoanDecision) {
	if s.dispatcher == nil {
		return
	}
	payload := events.LoanEvaluatedPayload{
		CustomerID:     customer.Identification,
		CustomerName:   customer.FullName(),
		RiskLevel:      level.String(),
		LoanAmount:     app.LoanAmount,
		Installments:   app.Installments,
		MonthlyIncome:  app.MonthlyIncome,
		Approved:       decision.Approved,
		RequiresAction: decision.RequiresAction,
		Outcome:        decision.Outcome(),
		Reason:         decision.Reason,
	}

	types := []events.EventType{events.EventLoanEvaluated}
	if decision.RequiresAction {
		types = append(types, events.EventLoanPreApproved)
	}
	for _, t := range types {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      t,
			Actor:     actor,
			Timestamp: s.now().UTC(),
			Payload:   payload,
		})
	}
}
