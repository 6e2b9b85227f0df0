package domain

import "github.com/shopspring/decimal"

// Account holds a participant's balance in whole currency units.
// Balances never go below zero; the ledger repository is the only writer.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary key (UUID)
	OwnerUserID   string          `json:"ownerUserID"`   // FK -> users.user_id
	Role          Role            `json:"role"`          // Owner role tag; the TEACHER account is the treasury
	AccountNumber string          `json:"accountNumber"` // Unique, human-enterable
	QRToken       string          `json:"-"`             // Login token, issued externally
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}
