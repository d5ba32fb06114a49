// Package bank holds the account domain: balances, the seeded account
// store, and the credential-gated bank service in front of them.
package bank

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Credential identifies an account together with its PIN. It is supplied by
// callers on every request and never stored beyond the authentication check.
type Credential struct {
	AccountID int64 `json:"account_id"`
	PIN       int   `json:"pin"`
}

// Account holds a single balance. Every mutation runs under the account's
// own mutex, so deposit and withdraw are atomic steps: two concurrent
// withdrawals can never both observe a pre-mutation balance that would
// permit an overdraft.
type Account struct {
	id int64

	mu      sync.Mutex
	balance decimal.Decimal
}

func NewAccount(id int64, opening decimal.Decimal) *Account {
	return &Account{id: id, balance: opening}
}

func (a *Account) ID() int64 {
	return a.id
}

// Deposit adds amount to the balance and returns the new balance.
// Zero and negative amounts are rejected with ErrInvalidAmount. There is
// no upper bound.
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
	return a.balance, nil
}

// Withdraw subtracts amount from the balance and returns the new balance.
// Negative amounts fail with ErrInvalidAmount; amounts exceeding the
// balance fail with ErrOverdraft and leave the balance unchanged.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() < 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.balance.Sub(amount)
	if next.IsNegative() {
		return decimal.Zero, ErrOverdraft
	}
	a.balance = next
	return a.balance, nil
}

// Balance returns the current balance. Always succeeds.
func (a *Account) Balance(ctx context.Context) (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}
