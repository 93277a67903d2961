package events

import (
	"time"

	"github.com/spec-kit/loan-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoanEvaluated   EventType = "loan_evaluated"
	EventLoanPreApproved EventType = "loan_pre_approved"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventUserLoggedOut   EventType = "user_logged_out"
)

// Actor identifies the portal user behind an event.
type Actor struct {
	Subject   string `json:"subject,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LoanEvaluatedPayload describes a finished evaluation.
type LoanEvaluatedPayload struct {
	CustomerID     string             `json:"customer_id"`
	CustomerName   string             `json:"customer_name"`
	RiskLevel      string             `json:"risk_level"`
	LoanAmount     float64            `json:"loan_amount"`
	Installments   int                `json:"installments"`
	MonthlyIncome  float64            `json:"monthly_income"`
	Approved       bool               `json:"approved"`
	RequiresAction bool               `json:"requires_action"`
	Outcome        domain.LoanOutcome `json:"outcome"`
	Reason         string             `json:"reason"`
}

// SessionPayload describes a login or logout.
type SessionPayload struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}
