package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one signed balance change inside an ApplyEntries call.
type EntryLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"` // Signed, non-zero, whole units
	Memo      string          `json:"memo"`
}

// ApplyEntriesRequest is the raw ledger primitive, exposed for teacher
// adjustments. Lines must balance to zero.
type ApplyEntriesRequest struct {
	Description string             `json:"description" binding:"required"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// IssueRequest mints new currency into the treasury.
type IssueRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Memo   string          `json:"memo"`
}

// EntryLineResponse mirrors domain.EntryLine.
type EntryLineResponse struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// EntryResponse mirrors domain.Entry.
type EntryResponse struct {
	EntryID     string              `json:"entryID"`
	Kind        domain.EntryKind    `json:"kind"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy"`
	Lines       []EntryLineResponse `json:"lines,omitempty"`
}

// StatementResponse is one page of an account's ledger lines.
type StatementResponse struct {
	Lines     []EntryLineResponse `json:"lines"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// ToEntryLineResponse converts a domain.EntryLine to its DTO.
func ToEntryLineResponse(l domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:         l.LineID,
		EntryID:        l.EntryID,
		AccountID:      l.AccountID,
		Amount:         l.Amount,
		Memo:           l.Memo,
		RunningBalance: l.RunningBalance,
		CreatedAt:      l.CreatedAt,
	}
}

// ToEntryLineResponses converts a slice of domain.EntryLine to DTOs.
func ToEntryLineResponses(lines []domain.EntryLine) []EntryLineResponse {
	res := make([]EntryLineResponse, len(lines))
	for i, l := range lines {
		res[i] = ToEntryLineResponse(l)
	}
	return res
}

// ToEntryResponse converts a domain.Entry to its DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:     e.EntryID,
		Kind:        e.Kind,
		Description: e.Description,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		Lines:       ToEntryLineResponses(e.Lines),
	}
}
