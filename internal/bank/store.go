package bank

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Store owns the set of accounts, keyed by account id. Accounts are seeded
// once at startup and live for the process lifetime; a production variant
// would load them from external storage.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*Account
}

func NewStore() *Store {
	return &Store{accounts: make(map[int64]*Account)}
}

// Add registers an account. Duplicate ids are an error so that every id in
// the store is reachable through exactly one Account instance.
func (s *Store) Add(a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID()]; ok {
		return fmt.Errorf("duplicate account id %d", a.ID())
	}
	s.accounts[a.ID()] = a
	return nil
}

// Get returns the live account for id. Absence is always an explicit
// ErrAccountNotFound, never a nil placeholder.
func (s *Store) Get(id int64) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Len reports the number of seeded accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// SeedFixture builds the store with the three demo accounts: account 1
// opens empty, account 2 with 100, account 3 with 500.
func SeedFixture() *Store {
	s := NewStore()
	for id, opening := range map[int64]int64{1: 0, 2: 100, 3: 500} {
		// ids are unique by construction, Add cannot fail here
		_ = s.Add(NewAccount(id, decimal.NewFromInt(opening)))
	}
	return s
}
