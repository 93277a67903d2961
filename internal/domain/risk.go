package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel is the credit risk tier of a customer.
type RiskLevel int

const (
	RiskHigh RiskLevel = iota
	RiskMedium
	RiskLow
)

// ErrUnknownRiskLevel is returned when a risk label does not map to a known tier.
var ErrUnknownRiskLevel = errors.New("unknown risk level")

var riskLabels = map[string]RiskLevel{
	"bajo":   RiskLow,
	"low":    RiskLow,
	"medio":  RiskMedium,
	"medium": RiskMedium,
	"alto":   RiskHigh,
	"high":   RiskHigh,
}

// ParseRiskLevel maps an upstream label onto a RiskLevel, ignoring case.
// Whitespace is significant. Unrecognized labels return RiskHigh and an error
// wrapping ErrUnknownRiskLevel.
func ParseRiskLevel(label string) (RiskLevel, error) {
	if level, ok := riskLabels[strings.ToLower(label)]; ok {
		return level, nil
	}
	return RiskHigh, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, label)
}

// String returns the canonical lower-case name.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}
