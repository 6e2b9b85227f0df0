package domain

import "time"

// Role identifies the kind of participant in the classroom economy.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleBanker  Role = "BANKER"
	RoleMart    Role = "MART"
)

// Capability is a single permitted operation class. Operation boundaries
// check capabilities instead of comparing roles directly.
type Capability string

const (
	CapTransfer       Capability = "TRANSFER"
	CapWithdraw       Capability = "WITHDRAW"
	CapTrade          Capability = "TRADE"
	CapEnrollSavings  Capability = "ENROLL_SAVINGS"
	CapJoinFund       Capability = "JOIN_FUND"
	CapCreateFund     Capability = "CREATE_FUND"
	CapPayTax         Capability = "PAY_TAX"
	CapIssueCurrency  Capability = "ISSUE_CURRENCY"
	CapManageMarket   Capability = "MANAGE_MARKET"
	CapManageSavings  Capability = "MANAGE_SAVINGS"
	CapManageTax      Capability = "MANAGE_TAX"
	CapManagePayroll  Capability = "MANAGE_PAYROLL"
	CapSettleFund     Capability = "SETTLE_FUND"
	CapViewAllLedgers Capability = "VIEW_ALL_LEDGERS"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleTeacher: capSet(
		CapTransfer, CapIssueCurrency, CapManageMarket, CapManageSavings,
		CapManageTax, CapManagePayroll, CapSettleFund, CapViewAllLedgers,
	),
	RoleStudent: capSet(
		CapTransfer, CapWithdraw, CapTrade, CapEnrollSavings,
		CapJoinFund, CapCreateFund, CapPayTax,
	),
	RoleBanker: capSet(CapTransfer, CapViewAllLedgers),
	RoleMart:   capSet(CapTransfer),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	s := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Actor is the authenticated caller of an operation, as supplied by the
// external identity provider. The core trusts it.
type Actor struct {
	UserID string `json:"userID"`
	Role   Role   `json:"role"`
}

// Classification places a student within the school (grade/class/number).
type Classification struct {
	Grade  int `json:"grade"`
	Class  int `json:"class"`
	Number int `json:"number"`
}

// User represents a participant. Roster administration (create/delete) is
// external; the core only reads users.
type User struct {
	UserID         string         `json:"userID"` // Primary key (UUID)
	Name           string         `json:"name"`
	Role           Role           `json:"role"`
	Classification Classification `json:"classification"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete
}
