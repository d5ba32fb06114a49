package atm

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/bank"
)

type mockSecurity struct {
	AuthenticateFunc      func(ctx context.Context, cred bank.Credential) (bool, error)
	CanDepositFunc        func(ctx context.Context, accountID int64) (bool, error)
	CanWithdrawFunc       func(ctx context.Context, accountID int64) (bool, error)
	CanBalanceFunc        func(ctx context.Context, accountID int64) (bool, error)
	CanAccessTerminalFunc func(ctx context.Context, accountID int64) (bool, error)

	authenticateCalls int
}

func (m *mockSecurity) Authenticate(ctx context.Context, cred bank.Credential) (bool, error) {
	m.authenticateCalls++
	return m.AuthenticateFunc(ctx, cred)
}

func (m *mockSecurity) CanDeposit(ctx context.Context, accountID int64) (bool, error) {
	return m.CanDepositFunc(ctx, accountID)
}

func (m *mockSecurity) CanWithdraw(ctx context.Context, accountID int64) (bool, error) {
	return m.CanWithdrawFunc(ctx, accountID)
}

func (m *mockSecurity) CanBalance(ctx context.Context, accountID int64) (bool, error) {
	return m.CanBalanceFunc(ctx, accountID)
}

func (m *mockSecurity) CanAccessTerminal(ctx context.Context, accountID int64) (bool, error) {
	return m.CanAccessTerminalFunc(ctx, accountID)
}

type mockBank struct {
	AccountFunc func(ctx context.Context, cred bank.Credential) (Account, error)
}

func (m *mockBank) Account(ctx context.Context, cred bank.Credential) (Account, error) {
	return m.AccountFunc(ctx, cred)
}

type mockAccount struct {
	DepositFunc  func(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	WithdrawFunc func(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	BalanceFunc  func(ctx context.Context) (decimal.Decimal, error)
}

func (m *mockAccount) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return m.DepositFunc(ctx, amount)
}

func (m *mockAccount) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return m.WithdrawFunc(ctx, amount)
}

func (m *mockAccount) Balance(ctx context.Context) (decimal.Decimal, error) {
	return m.BalanceFunc(ctx)
}

// rig wires a terminal against the fixture accounts and a permissive
// security mock, with a collector listening on the hub.
type rig struct {
	terminal *Terminal
	security *mockSecurity
	store    *bank.Store
	events   *collector
	cash     *CashBox
}

func newRig(t *testing.T) *rig {
	t.Helper()
	store := bank.SeedFixture()

	security := &mockSecurity{
		AuthenticateFunc: func(ctx context.Context, cred bank.Credential) (bool, error) {
			return cred.PIN != 0, nil
		},
		CanDepositFunc:        func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanWithdrawFunc:       func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanBalanceFunc:        func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanAccessTerminalFunc: func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
	}

	bankFacade := &mockBank{
		AccountFunc: func(ctx context.Context, cred bank.Credential) (Account, error) {
			return store.Get(cred.AccountID)
		},
	}

	events := &collector{}
	hub := NewHub(nil)
	hub.Register(events)

	cash := NewCashBox(InitialCash)
	return &rig{
		terminal: NewTerminal(bankFacade, security, hub, cash),
		security: security,
		store:    store,
		events:   events,
		cash:     cash,
	}
}

func (r *rig) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	a, err := r.store.Get(id)
	if err != nil {
		t.Fatalf("Missing account %d: %v", id, err)
	}
	balance, _ := a.Balance(context.Background())
	return balance
}

func (r *rig) lastEvent(t *testing.T) TransactionNotification {
	t.Helper()
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	if len(r.events.received) == 0 {
		t.Fatal("Expected at least one notification")
	}
	return r.events.received[len(r.events.received)-1]
}

func TestTerminal_Deposit(t *testing.T) {
	r := newRig(t)
	amount := decimal.NewFromInt(50)

	if err := r.terminal.Deposit(context.Background(), bank.Credential{AccountID: 2, PIN: 2345}, amount); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected balance 150, got %s", got)
	}
	// Deposits are non-cash instruments: the cash box is untouched.
	if !r.cash.Cash().Equal(InitialCash) {
		t.Errorf("Expected cash on hand %s, got %s", InitialCash, r.cash.Cash())
	}

	n := r.lastEvent(t)
	if n.Operation != OpDeposit || n.PrimaryAccount != 2 || n.SecondaryAccount != NoSecondaryAccount {
		t.Errorf("Unexpected notification: %+v", n)
	}
	if !n.Amount.Equal(amount) {
		t.Errorf("Expected notification amount %s, got %s", amount, n.Amount)
	}
}

func TestTerminal_DepositInvalidAmount(t *testing.T) {
	r := newRig(t)

	err := r.terminal.Deposit(context.Background(), bank.Credential{AccountID: 2, PIN: 2345}, decimal.Zero)
	if !errors.Is(err, bank.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}
	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance unchanged at 100, got %s", got)
	}
	// The rejected attempt is still announced.
	if c := r.events.count(); c != 1 {
		t.Errorf("Expected 1 notification, got %d", c)
	}
}

// Every attempt produces exactly one notification, before authentication
// runs. A denied caller is observed just like a successful one.
func TestTerminal_NotificationPrecedesAuthorization(t *testing.T) {
	r := newRig(t)
	r.security.AuthenticateFunc = func(ctx context.Context, cred bank.Credential) (bool, error) {
		if c := r.events.count(); c != 1 {
			t.Errorf("Expected notification before authentication, have %d", c)
		}
		return false, nil
	}

	err := r.terminal.Deposit(context.Background(), bank.Credential{AccountID: 2, PIN: 9999}, decimal.NewFromInt(50))
	if !errors.Is(err, bank.ErrAuthorizationDenied) {
		t.Fatalf("Expected ErrAuthorizationDenied, got %v", err)
	}
	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance unchanged at 100, got %s", got)
	}
	if c := r.events.count(); c != 1 {
		t.Errorf("Expected exactly 1 notification, got %d", c)
	}
}

func TestTerminal_DepositNotPermitted(t *testing.T) {
	r := newRig(t)
	r.security.CanDepositFunc = func(ctx context.Context, accountID int64) (bool, error) {
		return false, nil
	}

	err := r.terminal.Deposit(context.Background(), bank.Credential{AccountID: 3, PIN: 3456}, decimal.NewFromInt(50))
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("Expected ErrNotPermitted, got %v", err)
	}
	if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance unchanged at 500, got %s", got)
	}
}

func TestTerminal_Withdraw(t *testing.T) {
	r := newRig(t)
	amount := decimal.NewFromInt(75)

	if err := r.terminal.Withdraw(context.Background(), bank.Credential{AccountID: 3, PIN: 3456}, amount); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(425)) {
		t.Errorf("Expected balance 425, got %s", got)
	}
	expectedCash := InitialCash.Sub(amount)
	if !r.cash.Cash().Equal(expectedCash) {
		t.Errorf("Expected cash on hand %s, got %s", expectedCash, r.cash.Cash())
	}
}

// The cash check runs before authentication: a terminal that cannot pay
// out answers ErrInsufficientCash without consulting security, but the
// attempt is still broadcast.
func TestTerminal_WithdrawInsufficientCash(t *testing.T) {
	r := newRig(t)

	err := r.terminal.Withdraw(context.Background(), bank.Credential{AccountID: 3, PIN: 3456}, InitialCash.Add(decimal.NewFromInt(1)))
	if !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("Expected ErrInsufficientCash, got %v", err)
	}
	if r.security.authenticateCalls != 0 {
		t.Errorf("Expected security not to be consulted, got %d calls", r.security.authenticateCalls)
	}
	if c := r.events.count(); c != 1 {
		t.Errorf("Expected 1 notification, got %d", c)
	}
	if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance unchanged at 500, got %s", got)
	}
}

func TestTerminal_WithdrawOverdraft(t *testing.T) {
	r := newRig(t)

	// Account 2 holds 100; the terminal holds 500, so cash passes and the
	// account's own overdraft rule rejects.
	err := r.terminal.Withdraw(context.Background(), bank.Credential{AccountID: 2, PIN: 2345}, decimal.NewFromInt(200))
	if !errors.Is(err, bank.ErrOverdraft) {
		t.Fatalf("Expected ErrOverdraft, got %v", err)
	}
	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance unchanged at 100, got %s", got)
	}
	// A failed withdrawal dispenses nothing.
	if !r.cash.Cash().Equal(InitialCash) {
		t.Errorf("Expected cash on hand %s, got %s", InitialCash, r.cash.Cash())
	}
}

func TestTerminal_WithdrawNotPermitted(t *testing.T) {
	r := newRig(t)
	r.security.CanWithdrawFunc = func(ctx context.Context, accountID int64) (bool, error) {
		return false, nil
	}

	err := r.terminal.Withdraw(context.Background(), bank.Credential{AccountID: 2, PIN: 2345}, decimal.NewFromInt(50))
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("Expected ErrNotPermitted, got %v", err)
	}
	if !r.cash.Cash().Equal(InitialCash) {
		t.Errorf("Expected cash on hand %s, got %s", InitialCash, r.cash.Cash())
	}
}

func TestTerminal_GetBalance(t *testing.T) {
	r := newRig(t)

	balance, err := r.terminal.GetBalance(context.Background(), bank.Credential{AccountID: 3, PIN: 3456})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance 500, got %s", balance)
	}

	n := r.lastEvent(t)
	if n.Operation != OpBalance {
		t.Errorf("Expected OpBalance notification, got %s", n.Operation)
	}
	// Balance inquiries carry no amount.
	if !n.Amount.Equal(decimal.Zero) {
		t.Errorf("Expected zero notification amount, got %s", n.Amount)
	}
}

func TestTerminal_Transfer(t *testing.T) {
	r := newRig(t)
	from := bank.Credential{AccountID: 3, PIN: 3456}
	to := bank.Credential{AccountID: 2, PIN: 2345}

	if err := r.terminal.Transfer(context.Background(), from, to, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected source balance 300, got %s", got)
	}
	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected destination balance 300, got %s", got)
	}
	// Transfers move money between accounts, never through the cash box.
	if !r.cash.Cash().Equal(InitialCash) {
		t.Errorf("Expected cash on hand %s, got %s", InitialCash, r.cash.Cash())
	}

	n := r.lastEvent(t)
	if n.Operation != OpTransfer || n.PrimaryAccount != 3 || n.SecondaryAccount != 2 {
		t.Errorf("Unexpected notification: %+v", n)
	}
	if c := r.events.count(); c != 1 {
		t.Errorf("Expected a single notification for the whole transfer, got %d", c)
	}
}

func TestTerminal_TransferSourceOverdraft(t *testing.T) {
	r := newRig(t)
	from := bank.Credential{AccountID: 2, PIN: 2345}
	to := bank.Credential{AccountID: 3, PIN: 3456}

	err := r.terminal.Transfer(context.Background(), from, to, decimal.NewFromInt(500))
	if !errors.Is(err, bank.ErrOverdraft) {
		t.Fatalf("Expected ErrOverdraft, got %v", err)
	}
	// The withdrawal leg failed, so neither balance moved.
	if got := r.balance(t, 2); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected source balance 100, got %s", got)
	}
	if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected destination balance 500, got %s", got)
	}
}

func TestTerminal_TransferPermissions(t *testing.T) {
	tests := []struct {
		name        string
		canWithdraw bool
		canDeposit  bool
	}{
		{name: "Source Cannot Withdraw", canWithdraw: false, canDeposit: true},
		{name: "Destination Cannot Deposit", canWithdraw: true, canDeposit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.security.CanWithdrawFunc = func(ctx context.Context, accountID int64) (bool, error) {
				return tt.canWithdraw, nil
			}
			r.security.CanDepositFunc = func(ctx context.Context, accountID int64) (bool, error) {
				return tt.canDeposit, nil
			}

			from := bank.Credential{AccountID: 3, PIN: 3456}
			to := bank.Credential{AccountID: 2, PIN: 2345}
			err := r.terminal.Transfer(context.Background(), from, to, decimal.NewFromInt(50))
			if !errors.Is(err, ErrNotPermitted) {
				t.Fatalf("Expected ErrNotPermitted, got %v", err)
			}
			if got := r.balance(t, 3); !got.Equal(decimal.NewFromInt(500)) {
				t.Errorf("Expected source balance unchanged at 500, got %s", got)
			}
		})
	}
}

// A transfer whose deposit leg fails after a successful withdrawal leaves
// the withdrawal in place. There is no compensating rollback; the outcome
// is surfaced to the caller for reconciliation.
func TestTerminal_TransferSecondLegFailure(t *testing.T) {
	store := bank.SeedFixture()
	depositErr := errors.New("destination rejected the deposit")

	bankFacade := &mockBank{
		AccountFunc: func(ctx context.Context, cred bank.Credential) (Account, error) {
			if cred.AccountID == 2 {
				return &mockAccount{
					DepositFunc: func(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
						return decimal.Zero, depositErr
					},
				}, nil
			}
			return store.Get(cred.AccountID)
		},
	}
	security := &mockSecurity{
		AuthenticateFunc:      func(ctx context.Context, cred bank.Credential) (bool, error) { return true, nil },
		CanDepositFunc:        func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanWithdrawFunc:       func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanBalanceFunc:        func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
		CanAccessTerminalFunc: func(ctx context.Context, accountID int64) (bool, error) { return true, nil },
	}
	terminal := NewTerminal(bankFacade, security, NewHub(nil), NewCashBox(InitialCash))

	from := bank.Credential{AccountID: 3, PIN: 3456}
	to := bank.Credential{AccountID: 2, PIN: 2345}
	err := terminal.Transfer(context.Background(), from, to, decimal.NewFromInt(100))
	if !errors.Is(err, depositErr) {
		t.Fatalf("Expected deposit-leg error, got %v", err)
	}

	source, _ := store.Get(3)
	balance, _ := source.Balance(context.Background())
	if !balance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected source to stay debited at 400, got %s", balance)
	}
}
