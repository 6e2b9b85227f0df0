package services

import (
	"context"
	"errors"
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
	"github.com/shopspring/decimal"
)

// transferService moves money between accounts with two-line entries.
type transferService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewTransferService creates a new TransferService.
func NewTransferService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.TransferSvcFacade {
	return &transferService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if !amount.Equal(accounting.RoundToUnit(amount)) {
		return fmt.Errorf("%w: amount must be a whole currency unit", apperrors.ErrValidation)
	}
	return nil
}

func (s *transferService) buildTwoLineEntry(kind domain.EntryKind, description, memo string, from, to *domain.Account, amount decimal.Decimal, actor domain.Actor, now time.Time) (domain.Entry, []domain.EntryLine) {
	entryID := uuid.NewString()
	lines := []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: from.AccountID, Amount: amount.Neg(), Memo: memo},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: to.AccountID, Amount: amount, Memo: memo},
	}
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        kind,
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
	return entry, lines
}

// Transfer moves money to the account resolved by account number.
func (s *transferService) Transfer(ctx context.Context, actor domain.Actor, req dto.TransferRequest) (*domain.Entry, error) {
	if !actor.Role.Can(domain.CapTransfer) {
		return nil, fmt.Errorf("%w: transfers are not permitted for this role", apperrors.ErrForbidden)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	sender, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("sender account lookup failed: %w", err)
	}
	recipient, err := s.accountRepo.FindAccountByNumber(ctx, req.RecipientAccountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account with number %s", apperrors.ErrNotFound, req.RecipientAccountNumber)
		}
		return nil, err
	}
	if recipient.AccountID == sender.AccountID {
		return nil, fmt.Errorf("%w: cannot transfer to own account", apperrors.ErrValidation)
	}

	description := req.Memo
	if description == "" {
		description = fmt.Sprintf("transfer to %s", recipient.AccountNumber)
	}
	entry, lines := s.buildTwoLineEntry(domain.EntryTransfer, description, req.Memo, sender, recipient, req.Amount, actor, time.Now())
	if err := s.ledgerRepo.SaveEntry(ctx, entry, lines); err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("transfer settled",
		"entryID", entry.EntryID, "from", sender.AccountID, "to", recipient.AccountID, "amount", req.Amount.String())
	return &entry, nil
}

// Withdraw moves money to the shared account of the chosen counterparty role
// (an in-person cash-out with the banker or teacher).
func (s *transferService) Withdraw(ctx context.Context, actor domain.Actor, req dto.WithdrawRequest) (*domain.Entry, error) {
	if !actor.Role.Can(domain.CapWithdraw) {
		return nil, fmt.Errorf("%w: withdrawals are not permitted for this role", apperrors.ErrForbidden)
	}
	if req.CounterpartyRole != domain.RoleBanker && req.CounterpartyRole != domain.RoleTeacher {
		return nil, fmt.Errorf("%w: withdrawal counterparty must be BANKER or TEACHER", apperrors.ErrValidation)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	student, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("student account lookup failed: %w", err)
	}
	counterparty, err := s.accountRepo.FindAccountByRole(ctx, req.CounterpartyRole)
	if err != nil {
		return nil, fmt.Errorf("counterparty account lookup failed: %w", err)
	}

	description := req.Memo
	if description == "" {
		description = fmt.Sprintf("withdrawal via %s", req.CounterpartyRole)
	}
	entry, lines := s.buildTwoLineEntry(domain.EntryWithdrawal, description, req.Memo, student, counterparty, req.Amount, actor, time.Now())
	if err := s.ledgerRepo.SaveEntry(ctx, entry, lines); err != nil {
		return nil, err
	}
	return &entry, nil
}
