package dto

import (
	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest moves money to the account resolved by account number.
type TransferRequest struct {
	RecipientAccountNumber string          `json:"recipientAccountNumber" binding:"required"`
	Amount                 decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Memo                   string          `json:"memo" binding:"max=200"`
}

// WithdrawRequest moves money to a role-resolved counterparty (in-person
// cash-like transactions with the banker or teacher).
type WithdrawRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required,dgt0"`
	CounterpartyRole domain.Role     `json:"counterpartyRole" binding:"required,oneof=BANKER TEACHER"`
	Memo             string          `json:"memo" binding:"max=200"`
}
