package listeners

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sapliy/atm-network/internal/atm"
)

// Feed fans notifications out to connected websocket clients. A client
// whose write fails is dropped; the feed itself never errors a broadcast.
type Feed struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewFeed() *Feed {
	return &Feed{conns: make(map[*websocket.Conn]struct{})}
}

// Add attaches an upgraded websocket connection to the feed.
func (f *Feed) Add(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conns[conn] = struct{}{}
	log.Printf("Feed client connected (%d total)", len(f.conns))
}

// Remove detaches a connection and closes it.
func (f *Feed) Remove(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conns[conn]; !ok {
		return
	}
	delete(f.conns, conn)
	conn.Close()
}

// Clients reports the number of attached connections.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *Feed) HandleNotification(ctx context.Context, n atm.TransactionNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(n); err != nil {
			log.Printf("Dropping feed client after write failure: %v", err)
			delete(f.conns, conn)
			conn.Close()
		}
	}
	return nil
}
