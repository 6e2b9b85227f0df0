package services

import (
	"context"
	"fmt"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
)

// accountService provides read access to accounts. Students may only see
// their own account; holders of the view-all capability may see any.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccount(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerUserID != actor.UserID && !actor.Role.Can(domain.CapViewAllLedgers) {
		return nil, fmt.Errorf("%w: account %s is not visible to this user", apperrors.ErrForbidden, accountID)
	}
	return account, nil
}

func (s *accountService) GetMyAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	return s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
}

func (s *accountService) ListAccountsByRole(ctx context.Context, actor domain.Actor, role domain.Role) ([]domain.Account, error) {
	if !actor.Role.Can(domain.CapViewAllLedgers) {
		return nil, fmt.Errorf("%w: listing accounts requires the view-all capability", apperrors.ErrForbidden)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}
	return s.accountRepo.ListAccountsByRole(ctx, role, 100, 0)
}
