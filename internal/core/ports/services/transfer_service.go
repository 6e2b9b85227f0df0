package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/dto"
)

// TransferSvcFacade moves money between accounts.
type TransferSvcFacade interface {
	Transfer(ctx context.Context, actor domain.Actor, req dto.TransferRequest) (*domain.Entry, error)
	Withdraw(ctx context.Context, actor domain.Actor, req dto.WithdrawRequest) (*domain.Entry, error)
}
