package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/shopspring/decimal"
)

// SavingsSvcFacade runs the term-deposit products.
type SavingsSvcFacade interface {
	CreateProduct(ctx context.Context, actor domain.Actor, req dto.CreateSavingsProductRequest) (*domain.SavingsProduct, error)
	ListProducts(ctx context.Context, actor domain.Actor) ([]domain.SavingsProduct, error)
	Enroll(ctx context.Context, actor domain.Actor, req dto.EnrollRequest) (*domain.SavingsEnrollment, error)
	Cancel(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.SavingsEnrollment, decimal.Decimal, error)
	SettleMatured(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.SavingsEnrollment, decimal.Decimal, error)
	ListEnrollments(ctx context.Context, actor domain.Actor, accountID string) ([]domain.SavingsEnrollment, error)
	// SettleAllMatured pays out every ACTIVE enrollment past its maturity
	// date. Individual failures do not stop the sweep.
	SettleAllMatured(ctx context.Context) (*domain.BatchResult, error)
}
