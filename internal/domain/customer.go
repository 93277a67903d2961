package domain

// Customer is a bank customer as exposed by the core banking records.
type Customer struct {
	Identification string
	FirstName      string
	LastName       string
	CustomerType   string
	CreditScore    int
	RiskLabel      string
}

// FullName joins first and last name the way the portal displays them.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// RiskLevel parses the customer's risk label. Unknown labels yield RiskHigh
// together with ErrUnknownRiskLevel.
func (c Customer) RiskLevel() (RiskLevel, error) {
	return ParseRiskLevel(c.RiskLabel)
}
