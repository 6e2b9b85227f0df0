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

// savingsService runs the term-deposit products: enrollment, early
// cancellation and maturity settlement.
type savingsService struct {
	savingsRepo portsrepo.SavingsRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewSavingsService creates a new SavingsService.
func NewSavingsService(savingsRepo portsrepo.SavingsRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.SavingsSvcFacade {
	return &savingsService{savingsRepo: savingsRepo, accountRepo: accountRepo}
}

var _ portssvc.SavingsSvcFacade = (*savingsService)(nil)

func (s *savingsService) CreateProduct(ctx context.Context, actor domain.Actor, req dto.CreateSavingsProductRequest) (*domain.SavingsProduct, error) {
	if !actor.Role.Can(domain.CapManageSavings) {
		return nil, fmt.Errorf("%w: savings management is not permitted for this role", apperrors.ErrForbidden)
	}
	if req.EarlyCancelRate.GreaterThan(req.InterestRate) {
		return nil, fmt.Errorf("%w: early-cancel rate must not exceed the interest rate", apperrors.ErrValidation)
	}
	if !req.MaxAmount.IsPositive() {
		return nil, fmt.Errorf("%w: max amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	product := domain.SavingsProduct{
		ProductID:       uuid.NewString(),
		Name:            req.Name,
		MaturityDays:    req.MaturityDays,
		InterestRate:    req.InterestRate,
		EarlyCancelRate: req.EarlyCancelRate,
		MaxAmount:       accounting.RoundToUnit(req.MaxAmount),
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.savingsRepo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *savingsService) ListProducts(ctx context.Context, actor domain.Actor) ([]domain.SavingsProduct, error) {
	includeInactive := actor.Role.Can(domain.CapManageSavings)
	return s.savingsRepo.ListProducts(ctx, includeInactive)
}

// Enroll opens a term deposit: the principal leaves the student's account
// immediately and comes back with interest at settlement.
func (s *savingsService) Enroll(ctx context.Context, actor domain.Actor, req dto.EnrollRequest) (*domain.SavingsEnrollment, error) {
	if !actor.Role.Can(domain.CapEnrollSavings) {
		return nil, fmt.Errorf("%w: savings enrollment is not permitted for this role", apperrors.ErrForbidden)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	product, err := s.savingsRepo.FindProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s is no longer offered", apperrors.ErrValidation, req.ProductID)
	}
	if req.Amount.GreaterThan(product.MaxAmount) {
		return nil, fmt.Errorf("%w: amount exceeds the product maximum of %s", apperrors.ErrValidation, product.MaxAmount.String())
	}

	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("student account lookup failed: %w", err)
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.UserID,
	}
	enrollment := domain.SavingsEnrollment{
		EnrollmentID: uuid.NewString(),
		AccountID:    account.AccountID,
		ProductID:    product.ProductID,
		Principal:    req.Amount,
		StartDate:    now,
		MaturityDate: now.AddDate(0, 0, product.MaturityDays),
		Status:       domain.EnrollmentActive,
		AuditFields:  audit,
	}

	entryID := uuid.NewString()
	description := fmt.Sprintf("enroll in %s", product.Name)
	lines := []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: account.AccountID, Amount: req.Amount.Neg(), Memo: product.Name},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: treasury.AccountID, Amount: req.Amount, Memo: product.Name},
	}
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntrySavings,
		Description: description,
		Amount:      req.Amount,
		AuditFields: audit,
	}
	if err := s.savingsRepo.OpenEnrollment(ctx, enrollment, entry, lines); err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("savings enrollment opened",
		"enrollmentID", enrollment.EnrollmentID, "productID", product.ProductID, "principal", req.Amount.String())
	return &enrollment, nil
}

func (s *savingsService) settle(ctx context.Context, enrollment *domain.SavingsEnrollment, newStatus domain.EnrollmentStatus, payout decimal.Decimal, description, requestedBy string, now time.Time) (*domain.SavingsEnrollment, decimal.Decimal, error) {
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("treasury account lookup failed: %w", err)
	}
	settled, err := s.savingsRepo.SettleEnrollment(ctx, portsrepo.SettleEnrollmentParams{
		EnrollmentID:      enrollment.EnrollmentID,
		NewStatus:         newStatus,
		Payout:            payout,
		StudentAccountID:  enrollment.AccountID,
		TreasuryAccountID: treasury.AccountID,
		Description:       description,
		RequestedBy:       requestedBy,
		Now:               now,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return settled, payout, nil
}

// Cancel settles an ACTIVE enrollment before maturity at the pro-rated
// cancel rate. Once maturity is reached only the maturity path applies.
func (s *savingsService) Cancel(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.SavingsEnrollment, decimal.Decimal, error) {
	enrollment, err := s.savingsRepo.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("student account lookup failed: %w", err)
	}
	if enrollment.AccountID != account.AccountID {
		return nil, decimal.Zero, fmt.Errorf("%w: enrollment %s does not belong to this user", apperrors.ErrForbidden, enrollmentID)
	}

	now := time.Now()
	if !now.Before(enrollment.MaturityDate) {
		return nil, decimal.Zero, fmt.Errorf("%w: enrollment %s has reached maturity and settles at the full rate", apperrors.ErrValidation, enrollmentID)
	}

	product, err := s.savingsRepo.FindProductByID(ctx, enrollment.ProductID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	payout := accounting.EarlyCancelPayout(
		enrollment.Principal,
		product.EarlyCancelRate,
		product.InterestRate,
		enrollment.StartDate,
		enrollment.MaturityDate,
		now,
	)
	return s.settle(ctx, enrollment, domain.EnrollmentCancelled, payout,
		fmt.Sprintf("early cancellation of %s", product.Name), actor.UserID, now)
}

// SettleMatured pays out one enrollment that has reached maturity.
func (s *savingsService) SettleMatured(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.SavingsEnrollment, decimal.Decimal, error) {
	if !actor.Role.Can(domain.CapManageSavings) {
		return nil, decimal.Zero, fmt.Errorf("%w: maturity settlement is not permitted for this role", apperrors.ErrForbidden)
	}
	return s.settleMaturedByID(ctx, enrollmentID, actor.UserID)
}

func (s *savingsService) settleMaturedByID(ctx context.Context, enrollmentID, requestedBy string) (*domain.SavingsEnrollment, decimal.Decimal, error) {
	enrollment, err := s.savingsRepo.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	now := time.Now()
	if now.Before(enrollment.MaturityDate) {
		return nil, decimal.Zero, fmt.Errorf("%w: enrollment %s has not reached maturity", apperrors.ErrValidation, enrollmentID)
	}
	product, err := s.savingsRepo.FindProductByID(ctx, enrollment.ProductID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	payout := accounting.MaturityPayout(enrollment.Principal, product.InterestRate)
	return s.settle(ctx, enrollment, domain.EnrollmentMatured, payout,
		fmt.Sprintf("maturity of %s", product.Name), requestedBy, now)
}

func (s *savingsService) ListEnrollments(ctx context.Context, actor domain.Actor, accountID string) ([]domain.SavingsEnrollment, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerUserID != actor.UserID && !actor.Role.Can(domain.CapViewAllLedgers) {
		return nil, fmt.Errorf("%w: enrollments of account %s are not visible to this user", apperrors.ErrForbidden, accountID)
	}
	return s.savingsRepo.ListEnrollmentsByAccount(ctx, accountID)
}

// SettleAllMatured pays out every ACTIVE enrollment past its maturity date.
// The status re-check under the row lock makes rerunning the sweep harmless;
// an enrollment settled between listing and paying counts as succeeded.
func (s *savingsService) SettleAllMatured(ctx context.Context) (*domain.BatchResult, error) {
	ids, err := s.savingsRepo.ListMaturedActiveEnrollmentIDs(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	result := &domain.BatchResult{}
	for _, id := range ids {
		_, _, err := s.settleMaturedByID(ctx, id, systemUserID)
		switch {
		case err == nil:
			result.AddSuccess(id)
		case errors.Is(err, apperrors.ErrAlreadyMatured), errors.Is(err, apperrors.ErrAlreadySettled):
			result.AddSuccess(id)
		default:
			logger.Error("maturity sweep failed for enrollment", "enrollmentID", id, "error", err)
			result.AddFailure(id, err)
		}
	}
	if len(ids) > 0 {
		logger.Info("maturity sweep completed", "settled", len(result.Succeeded), "failed", len(result.Failed))
	}
	return result, nil
}
