package services

// ServiceContainer holds all service facades for dependency injection.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Ledger   LedgerSvcFacade
	Transfer TransferSvcFacade
	Market   MarketSvcFacade
	Savings  SavingsSvcFacade
	Fund     FundSvcFacade
	Tax      TaxSvcFacade
	Payroll  PayrollSvcFacade
}
