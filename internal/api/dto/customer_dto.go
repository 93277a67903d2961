package dto

import "github.com/spec-kit/loan-portal/internal/domain"

// CustomerResponse keeps the field names of the core banking API.
type CustomerResponse struct {
	Identification string `json:"identificacion"`
	FirstName      string `json:"nombre"`
	LastName       string `json:"apellido"`
	CustomerType   string `json:"tipoCliente"`
	CreditScore    int    `json:"scoreCrediticio"`
	RiskLevel      string `json:"nivelRiesgo"`
}

// CustomerPageResponse is a page of customers.
type CustomerPageResponse struct {
	Content       []CustomerResponse `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

// NewCustomerResponse maps a customer onto its wire form.
func NewCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		Identification: c.Identification,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		CustomerType:   c.CustomerType,
		CreditScore:    c.CreditScore,
		RiskLevel:      c.RiskLabel,
	}
}

// NewCustomerPageResponse maps a listing page.
func NewCustomerPageResponse(customers []domain.Customer, page, size int, total int64, totalPages int) CustomerPageResponse {
	content := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		content = append(content, NewCustomerResponse(c))
	}
	return CustomerPageResponse{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
