package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/dto"
)

// TaxSvcFacade bills students and collects payments into the treasury.
type TaxSvcFacade interface {
	CreateTax(ctx context.Context, actor domain.Actor, req dto.CreateTaxRequest) (*domain.TaxItem, error)
	ListTaxes(ctx context.Context, actor domain.Actor) ([]domain.TaxItem, error)
	ListRecipients(ctx context.Context, actor domain.Actor, taxID string) ([]domain.TaxRecipient, error)
	Pay(ctx context.Context, actor domain.Actor, taxID string) (*domain.TaxRecipient, error)
	ListMyObligations(ctx context.Context, actor domain.Actor) ([]domain.TaxRecipient, error)
}
