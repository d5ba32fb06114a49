package atm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// collector records every notification it receives; fail and panicking
// variants exercise the hub's isolation guarantees.
type collector struct {
	mu       sync.Mutex
	received []TransactionNotification
	err      error
	panics   bool
}

func (c *collector) HandleNotification(ctx context.Context, n TransactionNotification) error {
	if c.panics {
		panic("listener blew up")
	}
	c.mu.Lock()
	c.received = append(c.received, n)
	c.mu.Unlock()
	return c.err
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func TestHub_RegisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	l := &collector{}

	if !hub.Register(l) {
		t.Error("Expected first Register to report success")
	}
	if !hub.Register(l) {
		t.Error("Expected repeat Register to report success")
	}
	if hub.Len() != 1 {
		t.Errorf("Expected 1 listener after double registration, got %d", hub.Len())
	}

	hub.Broadcast(context.Background(), NewTransactionNotification(1, NoSecondaryAccount, OpDeposit, decimal.NewFromInt(10)))
	if c := l.count(); c != 1 {
		t.Errorf("Expected exactly 1 delivery, got %d", c)
	}
}

func TestHub_UnregisterUnknownListener(t *testing.T) {
	hub := NewHub(nil)
	registered := &collector{}
	hub.Register(registered)

	// Removing a listener that was never registered must not disturb the
	// registered set.
	hub.Unregister(&collector{})
	if hub.Len() != 1 {
		t.Errorf("Expected 1 listener, got %d", hub.Len())
	}

	hub.Unregister(registered)
	if hub.Len() != 0 {
		t.Errorf("Expected 0 listeners, got %d", hub.Len())
	}
}

func TestHub_BroadcastIsolatesFailures(t *testing.T) {
	hub := NewHub(nil)
	failing := &collector{err: errors.New("delivery refused")}
	panicking := &collector{panics: true}
	healthy := &collector{}

	hub.Register(failing)
	hub.Register(panicking)
	hub.Register(healthy)

	n := NewTransactionNotification(1, NoSecondaryAccount, OpWithdraw, decimal.NewFromInt(25))
	hub.Broadcast(context.Background(), n)

	if c := healthy.count(); c != 1 {
		t.Errorf("Expected healthy listener to receive 1 notification, got %d", c)
	}
	if c := failing.count(); c != 1 {
		t.Errorf("Expected failing listener to have been attempted, got %d deliveries", c)
	}
	if hub.Len() != 3 {
		t.Errorf("Expected failing listeners to stay registered, got %d", hub.Len())
	}
}

func TestHub_BroadcastToEmptyHub(t *testing.T) {
	hub := NewHub(nil)
	// Must not block or panic with nobody listening.
	hub.Broadcast(context.Background(), NewTransactionNotification(1, NoSecondaryAccount, OpBalance, decimal.Zero))
}
