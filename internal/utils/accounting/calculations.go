package accounting

import (
	"fmt"
	"sort"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RoundToUnit rounds an amount to the currency's minimal unit (whole units)
// using banker's rounding. Every amount that reaches the ledger goes through
// this.
func RoundToUnit(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(0)
}

// TradeCost is the cash value of a trade: quantity x price, rounded to the
// minimal unit.
func TradeCost(price decimal.Decimal, quantity int64) decimal.Decimal {
	return RoundToUnit(price.Mul(decimal.NewFromInt(quantity)))
}

// MaturityPayout is principal x (1 + rate), rounded.
func MaturityPayout(principal, rate decimal.Decimal) decimal.Decimal {
	return RoundToUnit(principal.Mul(one.Add(rate)))
}

// EarlyCancelPayout is the payout for cancelling a term deposit before
// maturity: principal x (1 + cancelRate x elapsedFraction). The result never
// exceeds the full maturity payout at fullRate.
func EarlyCancelPayout(principal, cancelRate, fullRate decimal.Decimal, start, maturity, now time.Time) decimal.Decimal {
	term := maturity.Sub(start)
	if term <= 0 {
		return MaturityPayout(principal, fullRate)
	}
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > term {
		elapsed = term
	}
	fraction := decimal.NewFromFloat(elapsed.Seconds() / term.Seconds())
	payout := principal.Mul(one.Add(cancelRate.Mul(fraction)))
	if cap := principal.Mul(one.Add(fullRate)); payout.GreaterThan(cap) {
		payout = cap
	}
	return RoundToUnit(payout)
}

// FundPayout is units x unitPrice x (1 + rewardRate), rounded.
func FundPayout(units int64, unitPrice, rewardRate decimal.Decimal) decimal.Decimal {
	return RoundToUnit(unitPrice.Mul(decimal.NewFromInt(units)).Mul(one.Add(rewardRate)))
}

// SumLines returns the signed sum of a set of entry lines.
func SumLines(lines []domain.EntryLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// GrossAmount is the total value moved by an entry: the sum of its positive
// lines.
func GrossAmount(lines []domain.EntryLine) decimal.Decimal {
	gross := decimal.Zero
	for _, l := range lines {
		if l.Amount.IsPositive() {
			gross = gross.Add(l.Amount)
		}
	}
	return gross
}

// ApplyLines posts the lines against the opening balances in ascending
// LineID order. Each line gets its running balance stamped in place and the
// balances map ends up holding the closing balance per account. The first
// line that would take an account below zero aborts with an error, leaving
// the caller to discard the whole entry.
func ApplyLines(balances map[string]decimal.Decimal, lines []domain.EntryLine) error {
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LineID < lines[j].LineID
	})
	for i := range lines {
		accID := lines[i].AccountID
		next := balances[accID].Add(lines[i].Amount)
		if next.IsNegative() {
			return fmt.Errorf("account %s balance would drop to %s", accID, next.String())
		}
		lines[i].RunningBalance = next
		balances[accID] = next
	}
	return nil
}

// ValidateEntryLines checks the structural invariants of an entry before it
// is applied: at least one line, no zero-amount lines, whole-unit amounts,
// and a zero signed sum unless the entry kind is ISSUANCE.
func ValidateEntryLines(kind domain.EntryKind, lines []domain.EntryLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("entry must have at least one line")
	}
	for _, l := range lines {
		if l.Amount.IsZero() {
			return fmt.Errorf("entry line amount must be non-zero for account %s", l.AccountID)
		}
		if !l.Amount.Equal(RoundToUnit(l.Amount)) {
			return fmt.Errorf("entry line amount %s is not a whole currency unit", l.Amount.String())
		}
	}
	if kind != domain.EntryIssuance {
		if sum := SumLines(lines); !sum.IsZero() {
			return fmt.Errorf("entry lines do not balance to zero: sum is %s", sum.String())
		}
	}
	return nil
}
