// Package loan holds the loan approval rules.
package loan

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spec-kit/loan-portal/internal/domain"
)

const (
	// MaxDebtToIncomeRatio is the exclusive upper bound for the capacity rule.
	MaxDebtToIncomeRatio = 0.50
	// MinCreditScore is the exclusive lower bound for the willingness rule.
	MinCreditScore = 500
)

const (
	reasonPreApproved = "Loan Pre-Approved. As a 'low risk' client, please contact a sales representative at your nearest branch to finalize your application and discuss special conditions."
	reasonApproved    = "Congratulations! Your loan has been approved."
)

// Evaluate applies the approval rules to an application. It performs no
// validation: zero or negative denominators propagate as IEEE-754 Inf/NaN.
//
// Rule order (fail-fast):
//  1. Capacity: debt-to-income ratio must be below MaxDebtToIncomeRatio.
//  2. Willingness: credit score must be above MinCreditScore.
//  3. Low risk customers are pre-approved pending branch review.
func Evaluate(customer domain.Customer, application domain.LoanApplication) domain.LoanDecision {
	monthlyInstallment := application.LoanAmount / float64(application.Installments)
	ratio := DebtToIncomeRatio(monthlyInstallment, application.MonthlyIncome)

	if ratio >= MaxDebtToIncomeRatio {
		return domain.LoanDecision{
			Approved: false,
			Reason:   fmt.Sprintf("Your estimated Debt-to-Income ratio (%s%%) is 50%% or higher.", formatPercent(ratio)),
		}
	}

	if customer.CreditScore <= MinCreditScore {
		return domain.LoanDecision{
			Approved: false,
			Reason:   fmt.Sprintf("Your Credit Score (%d) is 500 or below.", customer.CreditScore),
		}
	}

	// unknown labels count as high risk
	if level, _ := customer.RiskLevel(); level == domain.RiskLow {
		return domain.LoanDecision{
			Approved:       true,
			RequiresAction: true,
			Reason:         reasonPreApproved,
		}
	}

	return domain.LoanDecision{Approved: true, Reason: reasonApproved}
}

// DebtToIncomeRatio divides the monthly installment by the monthly income.
func DebtToIncomeRatio(monthlyInstallment, monthlyIncome float64) float64 {
	return monthlyInstallment / monthlyIncome
}

func formatPercent(ratio float64) string {
	pct := ratio * 100
	switch {
	case math.IsInf(pct, 1):
		return "Infinity"
	case math.IsInf(pct, -1):
		return "-Infinity"
	case math.IsNaN(pct):
		return "NaN"
	}
	if isHalfwayTenth(pct) {
		// Exact ties round away from zero; FormatFloat would round to even.
		n := math.Floor(math.Abs(pct)*10) + 1
		return strconv.FormatFloat(math.Copysign(n/10, pct), 'f', 1, 64)
	}
	return strconv.FormatFloat(pct, 'f', 1, 64)
}

// isHalfwayTenth reports whether v lies exactly between two tenths. Such
// values are x.25 or x.75, so v*4 is an odd integer.
func isHalfwayTenth(v float64) bool {
	q := v * 4
	return q == math.Trunc(q) && math.Mod(q, 2) != 0
}
