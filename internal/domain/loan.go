package domain

// LoanApplication holds the parameters a customer submits for evaluation.
type LoanApplication struct {
	LoanAmount    float64
	Installments  int
	MonthlyIncome float64
}

// LoanDecision is the outcome of evaluating a LoanApplication.
type LoanDecision struct {
	Approved       bool
	Reason         string
	RequiresAction bool
}

// LoanOutcome is the presentation state derived from a decision.
type LoanOutcome string

const (
	LoanOutcomeRejected               LoanOutcome = "rejected"
	LoanOutcomeApprovedActionRequired LoanOutcome = "approved_action_required"
	LoanOutcomeApproved               LoanOutcome = "approved"
)

// Outcome maps the decision onto one of the three presentation states.
func (d LoanDecision) Outcome() LoanOutcome {
	switch {
	case !d.Approved:
		return LoanOutcomeRejected
	case d.RequiresAction:
		return LoanOutcomeApprovedActionRequired
	default:
		return LoanOutcomeApproved
	}
}
