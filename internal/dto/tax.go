package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTaxRequest bills a set of students. The due date is informational.
type CreateTaxRequest struct {
	Name       string          `json:"name" binding:"required,max=100"`
	Amount     decimal.Decimal `json:"amount" binding:"required,dgt0"`
	DueDate    time.Time       `json:"dueDate" binding:"required"`
	StudentIDs []string        `json:"studentIDs" binding:"required,min=1,dive,required"`
}

// TaxResponse mirrors domain.TaxItem.
type TaxResponse struct {
	TaxID   string          `json:"taxID"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"dueDate"`
}

// ObligationResponse mirrors domain.TaxRecipient.
type ObligationResponse struct {
	TaxID     string     `json:"taxID"`
	AccountID string     `json:"accountID"`
	IsPaid    bool       `json:"isPaid"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}

// ToTaxResponse converts a domain.TaxItem to its DTO.
func ToTaxResponse(t *domain.TaxItem) TaxResponse {
	return TaxResponse{TaxID: t.TaxID, Name: t.Name, Amount: t.Amount, DueDate: t.DueDate}
}

// ToTaxResponses converts tax items to DTOs.
func ToTaxResponses(taxes []domain.TaxItem) []TaxResponse {
	res := make([]TaxResponse, len(taxes))
	for i := range taxes {
		res[i] = ToTaxResponse(&taxes[i])
	}
	return res
}

// ToObligationResponse converts a domain.TaxRecipient to its DTO.
func ToObligationResponse(r *domain.TaxRecipient) ObligationResponse {
	return ObligationResponse{TaxID: r.TaxID, AccountID: r.AccountID, IsPaid: r.IsPaid, PaidAt: r.PaidAt}
}

// ToObligationResponses converts recipients to DTOs.
func ToObligationResponses(recipients []domain.TaxRecipient) []ObligationResponse {
	res := make([]ObligationResponse, len(recipients))
	for i := range recipients {
		res[i] = ToObligationResponse(&recipients[i])
	}
	return res
}
