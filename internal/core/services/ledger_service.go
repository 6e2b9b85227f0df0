package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
)

// ledgerService exposes the raw ledger primitives: manual balanced
// adjustments, currency issuance, and statement reads.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ApplyEntries posts a manual balanced adjustment across arbitrary accounts.
func (s *ledgerService) ApplyEntries(ctx context.Context, actor domain.Actor, req dto.ApplyEntriesRequest) (*domain.Entry, error) {
	if !actor.Role.Can(domain.CapIssueCurrency) {
		return nil, fmt.Errorf("%w: manual adjustments require the issuance capability", apperrors.ErrForbidden)
	}

	now := time.Now()
	entryID := uuid.NewString()
	lines := make([]domain.EntryLine, len(req.Lines))
	for i, lr := range req.Lines {
		lines[i] = domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: lr.AccountID,
			Amount:    lr.Amount,
			Memo:      lr.Memo,
		}
	}
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryAdjustment,
		Description: req.Description,
		Amount:      accounting.GrossAmount(lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
		Lines: lines,
	}
	if err := accounting.ValidateEntryLines(entry.Kind, lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.ledgerRepo.SaveEntry(ctx, entry, lines); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("failed to apply manual entry", "entryID", entryID, "error", err)
		return nil, err
	}
	return &entry, nil
}

// Issue mints new currency into the treasury with a single-line ISSUANCE
// entry. This is the only way total supply grows.
func (s *ledgerService) Issue(ctx context.Context, actor domain.Actor, req dto.IssueRequest) (*domain.Entry, error) {
	if !actor.Role.Can(domain.CapIssueCurrency) {
		return nil, fmt.Errorf("%w: issuance requires the issuance capability", apperrors.ErrForbidden)
	}
	amount := req.Amount
	if !amount.Equal(accounting.RoundToUnit(amount)) {
		return nil, fmt.Errorf("%w: issuance amount must be a whole currency unit", apperrors.ErrValidation)
	}

	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	now := time.Now()
	entryID := uuid.NewString()
	description := req.Memo
	if description == "" {
		description = "currency issuance"
	}
	lines := []domain.EntryLine{{
		LineID:    uuid.NewString(),
		EntryID:   entryID,
		AccountID: treasury.AccountID,
		Amount:    amount,
		Memo:      req.Memo,
	}}
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryIssuance,
		Description: description,
		Amount:      amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
		Lines: lines,
	}
	if err := s.ledgerRepo.SaveEntry(ctx, entry, lines); err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("currency issued", "amount", amount.String(), "entryID", entryID)
	return &entry, nil
}

// GetEntry retrieves an entry. Callers without the view-all capability only
// see entries that touch their own account.
func (s *ledgerService) GetEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.Entry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if actor.Role.Can(domain.CapViewAllLedgers) {
		return entry, nil
	}
	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, l := range entry.Lines {
		if l.AccountID == account.AccountID {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("%w: entry %s is not visible to this user", apperrors.ErrForbidden, entryID)
}

// ListAccountStatement retrieves a page of an account's ledger lines.
func (s *ledgerService) ListAccountStatement(ctx context.Context, actor domain.Actor, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.OwnerUserID != actor.UserID && !actor.Role.Can(domain.CapViewAllLedgers) {
		return nil, nil, fmt.Errorf("%w: statement of account %s is not visible to this user", apperrors.ErrForbidden, accountID)
	}
	return s.ledgerRepo.ListLinesByAccountID(ctx, accountID, limit, nextToken)
}
