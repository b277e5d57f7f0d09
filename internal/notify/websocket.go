package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketNotifier broadcasts every TransferEvent to connected websocket
// clients — the live feed behind cmd/hybridsim-server's /env/{envID}/ws.
type WebSocketNotifier struct {
	id         string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan TransferEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWebSocketNotifier builds and starts a websocket notifier.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	wsn := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan TransferEvent, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	wsn.wg.Add(1)
	go wsn.run()
	return wsn
}

func (wsn *WebSocketNotifier) ID() string   { return wsn.id }
func (wsn *WebSocketNotifier) Type() string { return "websocket" }

// RegisterClient adds a newly upgraded connection to the broadcast set.
func (wsn *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	select {
	case wsn.register <- conn:
	case <-wsn.done:
	}
}

// UnregisterClient removes and closes conn.
func (wsn *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	select {
	case wsn.unregister <- conn:
	case <-wsn.done:
	}
}

func (wsn *WebSocketNotifier) Notify(ctx context.Context, event TransferEvent) error {
	select {
	case wsn.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("notification queue full")
	}
}

func (wsn *WebSocketNotifier) run() {
	defer wsn.wg.Done()
	for {
		select {
		case <-wsn.done:
			return
		case conn := <-wsn.register:
			if conn == nil {
				continue
			}
			wsn.mu.Lock()
			wsn.clients[conn] = true
			wsn.mu.Unlock()
		case conn := <-wsn.unregister:
			if conn == nil {
				continue
			}
			wsn.mu.Lock()
			if _, ok := wsn.clients[conn]; ok {
				delete(wsn.clients, conn)
				conn.Close()
			}
			wsn.mu.Unlock()
		case event, ok := <-wsn.broadcast:
			if !ok {
				return
			}
			wsn.fanOut(event)
		}
	}
}

func (wsn *WebSocketNotifier) fanOut(event TransferEvent) {
	data, err := event.JSON()
	if err != nil {
		return
	}

	wsn.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(wsn.clients))
	for conn := range wsn.clients {
		conns = append(conns, conn)
	}
	wsn.mu.RUnlock()

	var toRemove []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			toRemove = append(toRemove, conn)
			conn.Close()
		}
	}

	if len(toRemove) > 0 {
		wsn.mu.Lock()
		for _, conn := range toRemove {
			delete(wsn.clients, conn)
		}
		wsn.mu.Unlock()
	}
}

// GetUpgrader returns the websocket upgrader for HTTP handlers to use.
func (wsn *WebSocketNotifier) GetUpgrader() websocket.Upgrader {
	return wsn.upgrader
}

// Close stops the broadcaster goroutine and closes every client connection.
func (wsn *WebSocketNotifier) Close() error {
	close(wsn.done)

	wsn.mu.Lock()
	for conn := range wsn.clients {
		conn.Close()
		delete(wsn.clients, conn)
	}
	wsn.mu.Unlock()

	close(wsn.broadcast)
	close(wsn.register)
	close(wsn.unregister)

	wsn.wg.Wait()
	return nil
}
