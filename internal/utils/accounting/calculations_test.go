package accounting_test

import (
	"testing"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRoundToUnit(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"WholeNumberUnchanged", "100", "100"},
		{"RoundsDown", "100.4", "100"},
		{"RoundsUp", "100.6", "101"},
		{"HalfRoundsToEvenDown", "100.5", "100"},
		{"HalfRoundsToEvenUp", "101.5", "102"},
		{"NegativeHalfRoundsToEven", "-2.5", "-2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := accounting.RoundToUnit(dec(tc.input))
			assert.True(t, got.Equal(dec(tc.expected)), "got %s, want %s", got, tc.expected)
		})
	}
}

func TestTradeCost(t *testing.T) {
	assert.True(t, accounting.TradeCost(dec("120"), 3).Equal(dec("360")))
	assert.True(t, accounting.TradeCost(dec("33.4"), 3).Equal(dec("100")))
	assert.True(t, accounting.TradeCost(dec("1"), 0).Equal(decimal.Zero))
}

func TestMaturityPayout(t *testing.T) {
	// 1000 at 5% matures to 1050.
	assert.True(t, accounting.MaturityPayout(dec("1000"), dec("0.05")).Equal(dec("1050")))
	// 500 at 3% is 515.
	assert.True(t, accounting.MaturityPayout(dec("500"), dec("0.03")).Equal(dec("515")))
	// Fractional results round to the unit: 333 at 1% = 336.33 -> 336.
	assert.True(t, accounting.MaturityPayout(dec("333"), dec("0.01")).Equal(dec("336")))
}

func TestEarlyCancelPayout(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	maturity := start.AddDate(0, 0, 30)

	t.Run("ProRatedByElapsedTime", func(t *testing.T) {
		// 500 principal, 1% cancel rate, 10 of 30 days elapsed:
		// 500 x (1 + 0.01 x 10/30) = 501.67 -> 502.
		now := start.AddDate(0, 0, 10)
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.01"), dec("0.05"), start, maturity, now)
		assert.True(t, got.Equal(dec("502")), "got %s", got)
	})

	t.Run("NothingElapsedReturnsPrincipal", func(t *testing.T) {
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.01"), dec("0.05"), start, maturity, start)
		assert.True(t, got.Equal(dec("500")))
	})

	t.Run("ClockBeforeStartClampsToZeroElapsed", func(t *testing.T) {
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.01"), dec("0.05"), start, maturity, start.Add(-time.Hour))
		assert.True(t, got.Equal(dec("500")))
	})

	t.Run("ElapsedPastMaturityClampsToFullTerm", func(t *testing.T) {
		// Full term at the cancel rate: 500 x 1.01 = 505.
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.01"), dec("0.05"), start, maturity, maturity.AddDate(0, 0, 5))
		assert.True(t, got.Equal(dec("505")))
	})

	t.Run("NeverExceedsMaturityPayout", func(t *testing.T) {
		// Cancel rate above the full rate is capped at the maturity payout.
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.10"), dec("0.05"), start, maturity, maturity)
		assert.True(t, got.Equal(dec("525")), "got %s", got)
	})

	t.Run("ZeroTermPaysFullRate", func(t *testing.T) {
		got := accounting.EarlyCancelPayout(dec("500"), dec("0.01"), dec("0.05"), start, start, start)
		assert.True(t, got.Equal(dec("525")))
	})
}

func TestFundPayout(t *testing.T) {
	// 10 units at 100 with 8% reward = 1080.
	assert.True(t, accounting.FundPayout(10, dec("100"), dec("0.08")).Equal(dec("1080")))
	// Zero reward returns the invested amount.
	assert.True(t, accounting.FundPayout(5, dec("100"), decimal.Zero).Equal(dec("500")))
	// 3 units at 33 with 1% = 99.99 -> 100.
	assert.True(t, accounting.FundPayout(3, dec("33"), dec("0.01")).Equal(dec("100")))
}

func TestSumLinesAndGrossAmount(t *testing.T) {
	lines := []domain.EntryLine{
		{AccountID: "acc-1", Amount: dec("-300")},
		{AccountID: "acc-2", Amount: dec("200")},
		{AccountID: "acc-3", Amount: dec("100")},
	}
	assert.True(t, accounting.SumLines(lines).IsZero())
	assert.True(t, accounting.GrossAmount(lines).Equal(dec("300")))

	assert.True(t, accounting.SumLines(nil).IsZero())
	assert.True(t, accounting.GrossAmount(nil).IsZero())
}

func TestApplyLines(t *testing.T) {
	t.Run("StampsRunningBalancesPerAccount", func(t *testing.T) {
		balances := map[string]decimal.Decimal{
			"acc-a": dec("200"),
			"acc-b": dec("50"),
		}
		lines := []domain.EntryLine{
			{LineID: "line-1", AccountID: "acc-a", Amount: dec("-150")},
			{LineID: "line-2", AccountID: "acc-b", Amount: dec("150")},
		}

		require.NoError(t, accounting.ApplyLines(balances, lines))

		assert.True(t, lines[0].RunningBalance.Equal(dec("50")))
		assert.True(t, lines[1].RunningBalance.Equal(dec("200")))
		assert.True(t, balances["acc-a"].Equal(dec("50")))
		assert.True(t, balances["acc-b"].Equal(dec("200")))
	})

	t.Run("OverdraftRejected", func(t *testing.T) {
		balances := map[string]decimal.Decimal{
			"acc-a": dec("100"),
			"acc-b": dec("0"),
		}
		lines := []domain.EntryLine{
			{LineID: "line-1", AccountID: "acc-a", Amount: dec("-150")},
			{LineID: "line-2", AccountID: "acc-b", Amount: dec("150")},
		}

		err := accounting.ApplyLines(balances, lines)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "acc-a")
	})

	t.Run("SameAccountLinesAccumulate", func(t *testing.T) {
		balances := map[string]decimal.Decimal{
			"acc-a": dec("100"),
			"acc-b": dec("0"),
		}
		lines := []domain.EntryLine{
			{LineID: "line-1", AccountID: "acc-a", Amount: dec("-60")},
			{LineID: "line-2", AccountID: "acc-a", Amount: dec("-40")},
			{LineID: "line-3", AccountID: "acc-b", Amount: dec("100")},
		}

		require.NoError(t, accounting.ApplyLines(balances, lines))

		assert.True(t, lines[0].RunningBalance.Equal(dec("40")))
		assert.True(t, lines[1].RunningBalance.Equal(decimal.Zero))
		assert.True(t, balances["acc-a"].IsZero())
	})

	t.Run("TransientOverdraftWithinEntryRejected", func(t *testing.T) {
		// The balance check runs line by line in LineID order, so a debit
		// that precedes the covering credit fails even when the entry nets
		// out above zero.
		balances := map[string]decimal.Decimal{"acc-a": dec("50")}
		lines := []domain.EntryLine{
			{LineID: "line-1", AccountID: "acc-a", Amount: dec("-100")},
			{LineID: "line-2", AccountID: "acc-a", Amount: dec("100")},
		}

		require.Error(t, accounting.ApplyLines(balances, lines))
	})

	t.Run("SortsByLineID", func(t *testing.T) {
		balances := map[string]decimal.Decimal{"acc-a": dec("100"), "acc-b": dec("0")}
		lines := []domain.EntryLine{
			{LineID: "line-2", AccountID: "acc-b", Amount: dec("100")},
			{LineID: "line-1", AccountID: "acc-a", Amount: dec("-100")},
		}

		require.NoError(t, accounting.ApplyLines(balances, lines))

		assert.Equal(t, "line-1", lines[0].LineID)
		assert.True(t, lines[0].RunningBalance.IsZero())
	})
}

func TestValidateEntryLines(t *testing.T) {
	balanced := []domain.EntryLine{
		{AccountID: "acc-1", Amount: dec("-50")},
		{AccountID: "acc-2", Amount: dec("50")},
	}

	t.Run("BalancedTransferPasses", func(t *testing.T) {
		require.NoError(t, accounting.ValidateEntryLines(domain.EntryTransfer, balanced))
	})

	t.Run("EmptyLinesRejected", func(t *testing.T) {
		assert.Error(t, accounting.ValidateEntryLines(domain.EntryTransfer, nil))
	})

	t.Run("ZeroAmountLineRejected", func(t *testing.T) {
		lines := []domain.EntryLine{{AccountID: "acc-1", Amount: decimal.Zero}}
		assert.Error(t, accounting.ValidateEntryLines(domain.EntryIssuance, lines))
	})

	t.Run("FractionalAmountRejected", func(t *testing.T) {
		lines := []domain.EntryLine{
			{AccountID: "acc-1", Amount: dec("-50.5")},
			{AccountID: "acc-2", Amount: dec("50.5")},
		}
		assert.Error(t, accounting.ValidateEntryLines(domain.EntryTransfer, lines))
	})

	t.Run("UnbalancedTransferRejected", func(t *testing.T) {
		lines := []domain.EntryLine{
			{AccountID: "acc-1", Amount: dec("-50")},
			{AccountID: "acc-2", Amount: dec("60")},
		}
		assert.Error(t, accounting.ValidateEntryLines(domain.EntryTransfer, lines))
	})

	t.Run("IssuanceMayBeUnbalanced", func(t *testing.T) {
		lines := []domain.EntryLine{{AccountID: "treasury", Amount: dec("1000")}}
		require.NoError(t, accounting.ValidateEntryLines(domain.EntryIssuance, lines))
	})
}
