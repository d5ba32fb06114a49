package atm

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/bank"
)

// Account is a remote account handle: the bank's live account reached
// either in process or through per-call HTTP requests.
type Account interface {
	Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Bank hands out account handles, gated by authentication and terminal
// access on the bank side.
type Bank interface {
	Account(ctx context.Context, cred bank.Credential) (Account, error)
}

// Security answers the authentication and per-operation authorization
// questions a terminal asks before touching an account.
type Security interface {
	Authenticate(ctx context.Context, cred bank.Credential) (bool, error)
	CanDeposit(ctx context.Context, accountID int64) (bool, error)
	CanWithdraw(ctx context.Context, accountID int64) (bool, error)
	CanBalance(ctx context.Context, accountID int64) (bool, error)
	CanAccessTerminal(ctx context.Context, accountID int64) (bool, error)
}

// Terminal is one logical ATM. Every operation is a single request/response
// exchange: broadcast the attempt, authenticate, authorize the specific
// operation, then touch the account through the bank.
type Terminal struct {
	id       uuid.UUID
	bank     Bank
	security Security
	hub      *Hub
	cash     *CashBox
}

func NewTerminal(b Bank, s Security, hub *Hub, cash *CashBox) *Terminal {
	return &Terminal{
		id:       uuid.New(),
		bank:     b,
		security: s,
		hub:      hub,
		cash:     cash,
	}
}

func (t *Terminal) ID() uuid.UUID { return t.id }

// CashOnHand reports the cash available to this terminal. With a shared
// cash scope, this is the pool-wide box.
func (t *Terminal) CashOnHand() decimal.Decimal { return t.cash.Cash() }

// RegisterForNotifications adds a listener to this terminal's hub.
func (t *Terminal) RegisterForNotifications(l Listener) bool {
	return t.hub.Register(l)
}

// UnregisterForNotifications removes a previously registered listener.
func (t *Terminal) UnregisterForNotifications(l Listener) {
	t.hub.Unregister(l)
}

func (t *Terminal) authenticate(ctx context.Context, cred bank.Credential) error {
	ok, err := t.security.Authenticate(ctx, cred)
	if err != nil {
		return err
	}
	if !ok {
		return bank.ErrAuthorizationDenied
	}
	return nil
}

// Deposit credits amount to the account. Cash on hand is unaffected:
// deposits are assumed to be non-cash instruments.
func (t *Terminal) Deposit(ctx context.Context, cred bank.Credential, amount decimal.Decimal) (err error) {
	defer func() { recordOperation(OpDeposit, err) }()
	t.hub.Broadcast(ctx, NewTransactionNotification(cred.AccountID, NoSecondaryAccount, OpDeposit, amount))

	if err = t.authenticate(ctx, cred); err != nil {
		return err
	}
	ok, err := t.security.CanDeposit(ctx, cred.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPermitted
	}

	account, err := t.bank.Account(ctx, cred)
	if err != nil {
		return err
	}
	_, err = account.Deposit(ctx, amount)
	return err
}

// Withdraw debits amount from the account and draws down cash on hand.
// The cash check runs before authentication, so a caller learns about a
// cash shortage even with invalid credentials.
func (t *Terminal) Withdraw(ctx context.Context, cred bank.Credential, amount decimal.Decimal) (err error) {
	defer func() { recordOperation(OpWithdraw, err) }()
	t.hub.Broadcast(ctx, NewTransactionNotification(cred.AccountID, NoSecondaryAccount, OpWithdraw, amount))

	if !t.cash.Sufficient(amount) {
		return ErrInsufficientCash
	}

	if err = t.authenticate(ctx, cred); err != nil {
		return err
	}
	ok, err := t.security.CanWithdraw(ctx, cred.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPermitted
	}

	account, err := t.bank.Account(ctx, cred)
	if err != nil {
		return err
	}
	// The account enforces non-overdraft on its own.
	if _, err = account.Withdraw(ctx, amount); err != nil {
		return err
	}
	t.cash.Debit(amount)
	return nil
}

// GetBalance returns the account's current balance.
func (t *Terminal) GetBalance(ctx context.Context, cred bank.Credential) (balance decimal.Decimal, err error) {
	defer func() { recordOperation(OpBalance, err) }()
	t.hub.Broadcast(ctx, NewTransactionNotification(cred.AccountID, NoSecondaryAccount, OpBalance, decimal.Zero))

	if err = t.authenticate(ctx, cred); err != nil {
		return decimal.Zero, err
	}
	ok, err := t.security.CanBalance(ctx, cred.AccountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, ErrNotPermitted
	}

	account, err := t.bank.Account(ctx, cred)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance(ctx)
}

// Transfer moves amount between two accounts as two sequential legs:
// withdraw from the source, deposit into the destination. The legs are
// individually consistent but the pair is not atomic, and no compensating
// rollback runs if the deposit leg fails after a successful withdrawal.
// Callers must treat that outcome as a reportable inconsistency requiring
// manual reconciliation, not a recoverable condition.
func (t *Terminal) Transfer(ctx context.Context, from, to bank.Credential, amount decimal.Decimal) (err error) {
	defer func() { recordOperation(OpTransfer, err) }()
	t.hub.Broadcast(ctx, NewTransactionNotification(from.AccountID, to.AccountID, OpTransfer, amount))

	if err = t.authenticate(ctx, from); err != nil {
		return err
	}
	if err = t.authenticate(ctx, to); err != nil {
		return err
	}

	// Withdraw privileges on the source and deposit privileges on the
	// destination, both required.
	okFrom, err := t.security.CanWithdraw(ctx, from.AccountID)
	if err != nil {
		return err
	}
	okTo, err := t.security.CanDeposit(ctx, to.AccountID)
	if err != nil {
		return err
	}
	if !okFrom || !okTo {
		return ErrNotPermitted
	}

	source, err := t.bank.Account(ctx, from)
	if err != nil {
		return err
	}
	dest, err := t.bank.Account(ctx, to)
	if err != nil {
		return err
	}

	if _, err = source.Withdraw(ctx, amount); err != nil {
		return err
	}
	_, err = dest.Deposit(ctx, amount)
	return err
}
