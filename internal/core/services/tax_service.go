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
)

// taxService bills students and collects payments into the treasury.
type taxService struct {
	taxRepo     portsrepo.TaxRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewTaxService creates a new TaxService.
func NewTaxService(taxRepo portsrepo.TaxRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.TaxSvcFacade {
	return &taxService{taxRepo: taxRepo, accountRepo: accountRepo}
}

var _ portssvc.TaxSvcFacade = (*taxService)(nil)

// CreateTax bills the named students. Every student must have an active
// account; the whole creation fails otherwise.
func (s *taxService) CreateTax(ctx context.Context, actor domain.Actor, req dto.CreateTaxRequest) (*domain.TaxItem, error) {
	if !actor.Role.Can(domain.CapManageTax) {
		return nil, fmt.Errorf("%w: tax management is not permitted for this role", apperrors.ErrForbidden)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.UserID,
	}
	tax := domain.TaxItem{
		TaxID:       uuid.NewString(),
		Name:        req.Name,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		AuditFields: audit,
	}

	seen := make(map[string]struct{}, len(req.StudentIDs))
	recipients := make([]domain.TaxRecipient, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		if _, dup := seen[studentID]; dup {
			continue
		}
		seen[studentID] = struct{}{}
		account, err := s.accountRepo.FindAccountByOwner(ctx, studentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no active account for student %s", apperrors.ErrNotFound, studentID)
			}
			return nil, err
		}
		recipients = append(recipients, domain.TaxRecipient{
			TaxID:       tax.TaxID,
			AccountID:   account.AccountID,
			IsPaid:      false,
			AuditFields: audit,
		})
	}

	if err := s.taxRepo.SaveTax(ctx, tax, recipients); err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("tax created",
		"taxID", tax.TaxID, "amount", tax.Amount.String(), "recipients", len(recipients))
	return &tax, nil
}

func (s *taxService) ListTaxes(ctx context.Context, actor domain.Actor) ([]domain.TaxItem, error) {
	return s.taxRepo.ListTaxes(ctx, 100, 0)
}

func (s *taxService) ListRecipients(ctx context.Context, actor domain.Actor, taxID string) ([]domain.TaxRecipient, error) {
	if !actor.Role.Can(domain.CapManageTax) {
		return nil, fmt.Errorf("%w: recipient listing is not permitted for this role", apperrors.ErrForbidden)
	}
	if _, err := s.taxRepo.FindTaxByID(ctx, taxID); err != nil {
		return nil, err
	}
	return s.taxRepo.ListRecipientsByTax(ctx, taxID)
}

// Pay settles the caller's obligation under one tax item.
func (s *taxService) Pay(ctx context.Context, actor domain.Actor, taxID string) (*domain.TaxRecipient, error) {
	if !actor.Role.Can(domain.CapPayTax) {
		return nil, fmt.Errorf("%w: tax payment is not permitted for this role", apperrors.ErrForbidden)
	}

	tax, err := s.taxRepo.FindTaxByID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("student account lookup failed: %w", err)
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	recipient, err := s.taxRepo.PayTax(ctx, portsrepo.PayTaxParams{
		TaxID:             taxID,
		AccountID:         account.AccountID,
		Amount:            tax.Amount,
		TreasuryAccountID: treasury.AccountID,
		Description:       fmt.Sprintf("tax payment: %s", tax.Name),
		RequestedBy:       actor.UserID,
		Now:               time.Now(),
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("tax paid",
		"taxID", taxID, "accountID", account.AccountID, "amount", tax.Amount.String())
	return recipient, nil
}

func (s *taxService) ListMyObligations(ctx context.Context, actor domain.Actor) ([]domain.TaxRecipient, error) {
	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("student account lookup failed: %w", err)
	}
	return s.taxRepo.ListObligationsByAccount(ctx, account.AccountID)
}
