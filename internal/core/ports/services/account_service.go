package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
)

// AccountSvcFacade reads account state. Students may only read their own
// account; the teacher may read any.
type AccountSvcFacade interface {
	GetAccount(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error)
	GetMyAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error)
	ListAccountsByRole(ctx context.Context, actor domain.Actor, role domain.Role) ([]domain.Account, error)
}
