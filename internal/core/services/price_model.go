package services

import (
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// PriceModel decides the next price of a stock on each scheduler tick. It is
// a policy seam: the classroom economy ships a random walk, but different
// market behaviors plug in here.
type PriceModel interface {
	// Next returns the price to move to, given the current price and the
	// stock's volatility. The result must be positive.
	Next(current, volatility decimal.Decimal) decimal.Decimal
}

// randomWalkModel moves the price by a uniform whole-unit step bounded by
// the stock's volatility. Prices never walk below one unit.
type randomWalkModel struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWalkModel creates the default price model.
func NewRandomWalkModel(seed int64) PriceModel {
	return &randomWalkModel{rng: rand.New(rand.NewSource(seed))}
}

var _ PriceModel = (*randomWalkModel)(nil)

func (m *randomWalkModel) Next(current, volatility decimal.Decimal) decimal.Decimal {
	bound := volatility.IntPart()
	if bound <= 0 {
		return current
	}
	m.mu.Lock()
	step := m.rng.Int63n(2*bound+1) - bound
	m.mu.Unlock()

	next := current.Add(decimal.NewFromInt(step))
	if next.LessThan(decimal.NewFromInt(1)) {
		next = decimal.NewFromInt(1)
	}
	return next
}
