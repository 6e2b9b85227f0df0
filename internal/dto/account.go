package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse mirrors domain.Account. The QR token never leaves the core.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	OwnerUserID   string          `json:"ownerUserID"`
	Role          domain.Role     `json:"role"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		OwnerUserID:   acc.OwnerUserID,
		Role:          acc.Role,
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		IsActive:      acc.IsActive,
		CreatedAt:     acc.CreatedAt,
	}
}
