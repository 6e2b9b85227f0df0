package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxItem is a billed obligation created by the teacher.
// The due date is informational only; there is no late-fee logic.
type TaxItem struct {
	TaxID   string          `json:"taxID"` // Primary key (UUID)
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"dueDate"`
	AuditFields
}

// TaxRecipient is one student's obligation under one tax item.
type TaxRecipient struct {
	TaxID     string     `json:"taxID"`
	AccountID string     `json:"accountID"` // Student account
	IsPaid    bool       `json:"isPaid"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	AuditFields
}
