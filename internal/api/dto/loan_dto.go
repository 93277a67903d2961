package dto

import "github.com/spec-kit/loan-portal/internal/domain"

// LoanEvaluationRequest is the loan simulation form.
type LoanEvaluationRequest struct {
	LoanAmount    float64 `json:"loanAmount"`
	Installments  int     `json:"installments"`
	MonthlyIncome float64 `json:"monthlyIncome"`
}

// Application converts the request into the domain value.
func (r LoanEvaluationRequest) Application() domain.LoanApplication {
	return domain.LoanApplication{
		LoanAmount:    r.LoanAmount,
		Installments:  r.Installments,
		MonthlyIncome: r.MonthlyIncome,
	}
}

// LoanDecisionResponse is returned for every evaluation.
type LoanDecisionResponse struct {
	Approved       bool               `json:"approved"`
	Reason         string             `json:"reason"`
	RequiresAction bool               `json:"requiresAction,omitempty"`
	Outcome        domain.LoanOutcome `json:"outcome"`
}

// NewLoanDecisionResponse maps a decision.
func NewLoanDecisionResponse(d domain.LoanDecision) LoanDecisionResponse {
	return LoanDecisionResponse{
		Approved:       d.Approved,
		Reason:         d.Reason,
		RequiresAction: d.RequiresAction,
		Outcome:        d.Outcome(),
	}
}
