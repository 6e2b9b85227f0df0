package domain

import "github.com/shopspring/decimal"

// EntryKind classifies a settlement entry by the operation that produced it.
type EntryKind string

const (
	EntryTransfer      EntryKind = "TRANSFER"
	EntryAdjustment    EntryKind = "ADJUSTMENT"
	EntryWithdrawal    EntryKind = "WITHDRAWAL"
	EntryTrade         EntryKind = "TRADE"
	EntrySavings       EntryKind = "SAVINGS"
	EntrySavingsPayout EntryKind = "SAVINGS_PAYOUT"
	EntryFund          EntryKind = "FUND"
	EntryFundPayout    EntryKind = "FUND_PAYOUT"
	EntryTax           EntryKind = "TAX"
	EntryPayroll       EntryKind = "PAYROLL"
	EntryIssuance      EntryKind = "ISSUANCE"
)

// Entry is one settlement operation against the ledger. Its lines are
// immutable once written. Every kind except ISSUANCE sums to zero.
type Entry struct {
	EntryID     string          `json:"entryID"` // Primary key (UUID)
	Kind        EntryKind       `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // Gross value moved (sum of positive lines)
	AuditFields
	Lines []EntryLine `json:"lines,omitempty"`
}

// EntryLine is a single signed balance change on one account.
type EntryLine struct {
	LineID         string          `json:"lineID"`  // Primary key (UUID)
	EntryID        string          `json:"entryID"` // FK -> entries.entry_id
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"` // Signed, whole currency units, non-zero
	Memo           string          `json:"memo"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Balance after this line
	AuditFields
}
