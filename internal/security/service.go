// Package security decides who may do what. It owns the PIN records and the
// per-operation permission sets, and nothing else in the system does:
// keeping them out of the account records means a compromise of the bank
// service alone does not expose PINs or permissions.
package security

import (
	"context"
	"fmt"
	"log"

	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/pkg/pinhash"
)

// Record is one seed entry: an account's PIN and its operation grants.
type Record struct {
	AccountID int64 `json:"account_id"`
	PIN       int   `json:"pin"`
	Deposit   bool  `json:"deposit"`
	Withdraw  bool  `json:"withdraw"`
	Balance   bool  `json:"balance"`
}

// Service answers authentication and authorization questions. All methods
// are pure decisions over the seeded state; the only side effect is logging.
type Service struct {
	pins     map[int64]string // account id -> bcrypt hash of the PIN
	deposit  map[int64]struct{}
	withdraw map[int64]struct{}
	balance  map[int64]struct{}
}

// NewService hashes the seed PINs and builds the permission sets. The three
// sets are independent: an account may be withdraw-only, deposit-only, or
// any combination.
func NewService(records []Record) (*Service, error) {
	s := &Service{
		pins:     make(map[int64]string, len(records)),
		deposit:  make(map[int64]struct{}),
		withdraw: make(map[int64]struct{}),
		balance:  make(map[int64]struct{}),
	}
	for _, r := range records {
		if _, ok := s.pins[r.AccountID]; ok {
			return nil, fmt.Errorf("duplicate security record for account %d", r.AccountID)
		}
		hash, err := pinhash.Hash(r.PIN)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin for account %d: %w", r.AccountID, err)
		}
		s.pins[r.AccountID] = hash
		if r.Deposit {
			s.deposit[r.AccountID] = struct{}{}
		}
		if r.Withdraw {
			s.withdraw[r.AccountID] = struct{}{}
		}
		if r.Balance {
			s.balance[r.AccountID] = struct{}{}
		}
	}
	return s, nil
}

// Authenticate reports whether the credential's PIN matches the recorded
// one. An unknown account id returns false, not an error: callers cannot
// tell "wrong PIN" from "no such account", and that is intentional.
func (s *Service) Authenticate(ctx context.Context, cred bank.Credential) (bool, error) {
	hash, ok := s.pins[cred.AccountID]
	if !ok {
		log.Printf("security: no pin record for account %d", cred.AccountID)
		return false, nil
	}
	if !pinhash.Verify(hash, cred.PIN) {
		log.Printf("security: mismatched pin for account %d", cred.AccountID)
		return false, nil
	}
	return true, nil
}

// CanDeposit reports whether the account may deposit.
func (s *Service) CanDeposit(ctx context.Context, accountID int64) (bool, error) {
	_, ok := s.deposit[accountID]
	return ok, nil
}

// CanWithdraw reports whether the account may withdraw.
func (s *Service) CanWithdraw(ctx context.Context, accountID int64) (bool, error) {
	_, ok := s.withdraw[accountID]
	return ok, nil
}

// CanBalance reports whether the account may run balance inquiries.
func (s *Service) CanBalance(ctx context.Context, accountID int64) (bool, error) {
	_, ok := s.balance[accountID]
	return ok, nil
}

// CanAccessTerminal reports whether the account is reachable from a
// terminal at all. Always true today; kept as the extension point for
// terminal-restricted accounts.
func (s *Service) CanAccessTerminal(ctx context.Context, accountID int64) (bool, error) {
	return true, nil
}
