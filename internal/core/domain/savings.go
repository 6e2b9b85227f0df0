package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsProduct is a term-deposit product offered by the teacher.
type SavingsProduct struct {
	ProductID       string          `json:"productID"` // Primary key (UUID)
	Name            string          `json:"name"`
	MaturityDays    int             `json:"maturityDays"`    // Term length in days
	InterestRate    decimal.Decimal `json:"interestRate"`    // Paid at maturity
	EarlyCancelRate decimal.Decimal `json:"earlyCancelRate"` // <= InterestRate, pro-rated on cancel
	MaxAmount       decimal.Decimal `json:"maxAmount"`       // Maximum subscribable principal
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// EnrollmentStatus is the lifecycle state of a savings enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
	EnrollmentMatured   EnrollmentStatus = "MATURED"
)

// SavingsEnrollment is one student's term deposit in one product.
type SavingsEnrollment struct {
	EnrollmentID string           `json:"enrollmentID"` // Primary key (UUID)
	AccountID    string           `json:"accountID"`    // Student account
	ProductID    string           `json:"productID"`
	Principal    decimal.Decimal  `json:"principal"`
	StartDate    time.Time        `json:"startDate"`
	MaturityDate time.Time        `json:"maturityDate"` // StartDate + product term
	Status       EnrollmentStatus `json:"status"`
	AuditFields
}
