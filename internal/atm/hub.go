package atm

import (
	"context"
	"sync"

	"github.com/sapliy/atm-network/pkg/observability"
)

// Listener receives every broadcast notification. Implementations may do
// I/O (webhooks, queues, mail); the hub isolates their failures.
type Listener interface {
	HandleNotification(ctx context.Context, n TransactionNotification) error
}

// Hub owns the set of registered listeners. Membership is handle identity,
// not value equality: registering the same listener twice is a no-op.
type Hub struct {
	mu        sync.RWMutex
	listeners map[Listener]struct{}
	log       *observability.Logger
}

func NewHub(log *observability.Logger) *Hub {
	if log == nil {
		log = observability.NewLogger("hub")
	}
	return &Hub{
		listeners: make(map[Listener]struct{}),
		log:       log,
	}
}

// Register adds a listener. Returns true whether it was newly added or
// already present.
func (h *Hub) Register(l Listener) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[l]; ok {
		return true
	}
	h.listeners[l] = struct{}{}
	h.log.Info("listener registered", "listeners", len(h.listeners))
	return true
}

// Unregister removes a listener. Removing one that was never registered is
// tolerated with a warning.
func (h *Hub) Unregister(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[l]; !ok {
		h.log.Warn("asked to remove an unregistered listener")
		return
	}
	delete(h.listeners, l)
	h.log.Info("listener removed", "listeners", len(h.listeners))
}

// Len reports the current number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Broadcast delivers n to every registered listener in no particular order.
// Delivery is best-effort: an error or panic from one listener is logged
// and does not stop delivery to the rest, nor does it abort the operation
// that triggered the broadcast.
func (h *Hub) Broadcast(ctx context.Context, n TransactionNotification) {
	h.mu.RLock()
	targets := make([]Listener, 0, len(h.listeners))
	for l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.RUnlock()

	for _, l := range targets {
		h.deliver(ctx, l, n)
	}
}

func (h *Hub) deliver(ctx context.Context, l Listener, n TransactionNotification) {
	defer func() {
		if r := recover(); r != nil {
			broadcastFailures.Inc()
			h.log.Error("listener panicked during delivery",
				"notification", n.ID.String(), "panic", r)
		}
	}()
	if err := l.HandleNotification(ctx, n); err != nil {
		broadcastFailures.Inc()
		h.log.Error("failed to deliver notification",
			"notification", n.ID.String(), "err", err)
	}
}
