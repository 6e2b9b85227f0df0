package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSavingsProductRequest defines a new term-deposit product.
// The early-cancellation rate may not exceed the full interest rate.
type CreateSavingsProductRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	MaturityDays    int             `json:"maturityDays" binding:"required,gt=0"`
	InterestRate    decimal.Decimal `json:"interestRate" binding:"required,dgte0"`
	EarlyCancelRate decimal.Decimal `json:"earlyCancelRate" binding:"required,dgte0"`
	MaxAmount       decimal.Decimal `json:"maxAmount" binding:"required,dgt0"`
}

// EnrollRequest opens a term deposit.
type EnrollRequest struct {
	ProductID string          `json:"productID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// SavingsProductResponse mirrors domain.SavingsProduct.
type SavingsProductResponse struct {
	ProductID       string          `json:"productID"`
	Name            string          `json:"name"`
	MaturityDays    int             `json:"maturityDays"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	EarlyCancelRate decimal.Decimal `json:"earlyCancelRate"`
	MaxAmount       decimal.Decimal `json:"maxAmount"`
	IsActive        bool            `json:"isActive"`
}

// EnrollmentResponse mirrors domain.SavingsEnrollment, with the payout filled
// in on settlement responses.
type EnrollmentResponse struct {
	EnrollmentID string                  `json:"enrollmentID"`
	ProductID    string                  `json:"productID"`
	Principal    decimal.Decimal         `json:"principal"`
	StartDate    time.Time               `json:"startDate"`
	MaturityDate time.Time               `json:"maturityDate"`
	Status       domain.EnrollmentStatus `json:"status"`
	Payout       *decimal.Decimal        `json:"payout,omitempty"`
}

// ToSavingsProductResponse converts a domain.SavingsProduct to its DTO.
func ToSavingsProductResponse(p *domain.SavingsProduct) SavingsProductResponse {
	return SavingsProductResponse{
		ProductID:       p.ProductID,
		Name:            p.Name,
		MaturityDays:    p.MaturityDays,
		InterestRate:    p.InterestRate,
		EarlyCancelRate: p.EarlyCancelRate,
		MaxAmount:       p.MaxAmount,
		IsActive:        p.IsActive,
	}
}

// ToSavingsProductResponses converts products to DTOs.
func ToSavingsProductResponses(products []domain.SavingsProduct) []SavingsProductResponse {
	res := make([]SavingsProductResponse, len(products))
	for i := range products {
		res[i] = ToSavingsProductResponse(&products[i])
	}
	return res
}

// ToEnrollmentResponse converts a domain.SavingsEnrollment to its DTO.
func ToEnrollmentResponse(e *domain.SavingsEnrollment, payout *decimal.Decimal) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID: e.EnrollmentID,
		ProductID:    e.ProductID,
		Principal:    e.Principal,
		StartDate:    e.StartDate,
		MaturityDate: e.MaturityDate,
		Status:       e.Status,
		Payout:       payout,
	}
}

// ToEnrollmentResponses converts enrollments to DTOs.
func ToEnrollmentResponses(enrollments []domain.SavingsEnrollment) []EnrollmentResponse {
	res := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		res[i] = ToEnrollmentResponse(&enrollments[i], nil)
	}
	return res
}
