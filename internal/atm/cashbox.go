package atm

import (
	"sync"

	"github.com/shopspring/decimal"
)

// CashBox is a terminal's physical-currency counter. Deposits never touch
// it (envelopes and checks cannot be re-dispensed); only successful
// withdrawals draw it down.
type CashBox struct {
	mu   sync.Mutex
	cash decimal.Decimal
}

func NewCashBox(initial decimal.Decimal) *CashBox {
	cashOnHand.Add(initial.InexactFloat64())
	return &CashBox{cash: initial}
}

// Sufficient reports whether the box holds at least amount.
func (c *CashBox) Sufficient(amount decimal.Decimal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.cash.Sub(amount).IsNegative()
}

// Debit draws amount out of the box after a successful withdrawal.
func (c *CashBox) Debit(amount decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cash = c.cash.Sub(amount)
	cashOnHand.Sub(amount.InexactFloat64())
}

// Cash returns the current amount on hand.
func (c *CashBox) Cash() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cash
}
