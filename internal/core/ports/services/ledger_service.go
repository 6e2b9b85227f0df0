package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/dto"
)

// LedgerSvcFacade exposes the raw ledger primitives. Issue mints currency
// into the treasury; ApplyEntries posts an arbitrary balanced adjustment.
type LedgerSvcFacade interface {
	ApplyEntries(ctx context.Context, actor domain.Actor, req dto.ApplyEntriesRequest) (*domain.Entry, error)
	Issue(ctx context.Context, actor domain.Actor, req dto.IssueRequest) (*domain.Entry, error)
	GetEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.Entry, error)
	ListAccountStatement(ctx context.Context, actor domain.Actor, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error)
}
