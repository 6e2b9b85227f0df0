package services

import (
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/platform/config"
	"github.com/shopspring/decimal"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	container.Transfer = NewTransferService(repos.AccountRepo, repos.LedgerRepo)
	container.Market = NewMarketService(repos.StockRepo, repos.AccountRepo, NewRandomWalkModel(cfg.PriceModelSeed))
	container.Savings = NewSavingsService(repos.SavingsRepo, repos.AccountRepo)
	container.Fund = NewFundService(repos.FundRepo, repos.AccountRepo, decimal.NewFromFloat(cfg.FundFailurePayoutRatio))
	container.Tax = NewTaxService(repos.TaxRepo, repos.AccountRepo)
	container.Payroll = NewPayrollService(repos.JobRepo, repos.UserRepo, repos.AccountRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.LedgerSvcFacade   = (*ledgerService)(nil)
	_ portssvc.TransferSvcFacade = (*transferService)(nil)
	_ portssvc.MarketSvcFacade   = (*marketService)(nil)
	_ portssvc.SavingsSvcFacade  = (*savingsService)(nil)
	_ portssvc.FundSvcFacade     = (*fundService)(nil)
	_ portssvc.TaxSvcFacade      = (*taxService)(nil)
	_ portssvc.PayrollSvcFacade  = (*payrollService)(nil)
)
