package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStore_AddRejectsDuplicates(t *testing.T) {
	s := NewStore()
	if err := s.Add(NewAccount(1, decimal.Zero)); err != nil {
		t.Fatalf("Unexpected error adding account: %v", err)
	}
	if err := s.Add(NewAccount(1, decimal.NewFromInt(100))); err == nil {
		t.Error("Expected error adding duplicate account id, got nil")
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 account, got %d", s.Len())
	}
}

func TestStore_GetUnknownAccount(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(42); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

// Get must hand out the live instance: a deposit through one handle is
// visible through another.
func TestStore_GetReturnsLiveAccount(t *testing.T) {
	s := SeedFixture()

	first, err := s.Get(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := first.Deposit(context.Background(), decimal.NewFromInt(50)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, _ := s.Get(2)
	balance, _ := second.Balance(context.Background())
	if !balance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected balance 150 through second handle, got %s", balance)
	}
}

func TestSeedFixture(t *testing.T) {
	s := SeedFixture()
	expected := map[int64]int64{1: 0, 2: 100, 3: 500}

	if s.Len() != len(expected) {
		t.Fatalf("Expected %d accounts, got %d", len(expected), s.Len())
	}
	for id, opening := range expected {
		a, err := s.Get(id)
		if err != nil {
			t.Fatalf("Missing seeded account %d: %v", id, err)
		}
		balance, _ := a.Balance(context.Background())
		if !balance.Equal(decimal.NewFromInt(opening)) {
			t.Errorf("Account %d: expected opening balance %d, got %s", id, opening, balance)
		}
	}
}
