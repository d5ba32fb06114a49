package atm

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitialCash is the amount each cash box is stocked with at startup.
var InitialCash = decimal.NewFromInt(500)

// Scope controls whether a resource is shared by every terminal in the
// pool or owned by each terminal individually.
type Scope int

const (
	// ScopeShared means one cash box and one listener set serve every
	// terminal the factory hands out.
	ScopeShared Scope = iota
	// ScopePerTerminal gives each terminal its own copy.
	ScopePerTerminal
)

// PoolConfig makes the ownership question explicit instead of hiding it in
// process-wide state.
type PoolConfig struct {
	CashScope         Scope
	NotificationScope Scope
	InitialCash       decimal.Decimal
}

// Pool is the terminal factory. It owns the shared cash box and hub when
// the scopes call for sharing, and tracks every terminal it has issued.
type Pool struct {
	bank     Bank
	security Security
	cfg      PoolConfig

	sharedHub  *Hub
	sharedCash *CashBox

	mu        sync.RWMutex
	terminals map[uuid.UUID]*Terminal
}

// NewPool builds a terminal factory. hub is used directly when
// notifications are shared, and as the template logger otherwise.
func NewPool(b Bank, s Security, hub *Hub, cfg PoolConfig) *Pool {
	if cfg.InitialCash.IsZero() {
		cfg.InitialCash = InitialCash
	}
	p := &Pool{
		bank:      b,
		security:  s,
		cfg:       cfg,
		sharedHub: hub,
		terminals: make(map[uuid.UUID]*Terminal),
	}
	if cfg.CashScope == ScopeShared {
		p.sharedCash = NewCashBox(cfg.InitialCash)
	}
	return p
}

// NewTerminal issues a fresh terminal to a caller.
func (p *Pool) NewTerminal() *Terminal {
	hub := p.sharedHub
	if p.cfg.NotificationScope == ScopePerTerminal {
		hub = NewHub(nil)
	}
	cash := p.sharedCash
	if p.cfg.CashScope == ScopePerTerminal {
		cash = NewCashBox(p.cfg.InitialCash)
	}

	t := NewTerminal(p.bank, p.security, hub, cash)
	p.mu.Lock()
	p.terminals[t.ID()] = t
	p.mu.Unlock()
	return t
}

// Terminal looks up a previously issued terminal.
func (p *Pool) Terminal(id uuid.UUID) (*Terminal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.terminals[id]
	return t, ok
}

// Hub returns the shared hub (nil-safe only under ScopeShared wiring).
func (p *Pool) Hub() *Hub { return p.sharedHub }
