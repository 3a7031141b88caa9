package devserver

import (
	"sync"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// hub fans one room's events out to its websocket subscribers. Each
// subscriber gets a buffered send queue drained by its own writer goroutine,
// so a slow client cannot stall a broadcast; a subscriber whose queue is full
// is dropped.
type hub struct {
	logger *zap.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan domain.Event
}

const sendQueueSize = 16

func newHub(logger *zap.Logger) *hub {
	return &hub{
		logger: logger,
		subs:   map[*subscriber]struct{}{},
	}
}

func (h *hub) add(conn *websocket.Conn) {
	sub := &subscriber{conn: conn, send: make(chan domain.Event, sendQueueSize)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

func (h *hub) broadcast(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- event:
		default:
			h.logger.Warn("subscriber send queue full, dropping subscriber")
			delete(h.subs, sub)
			close(sub.send)
		}
	}
}

func (h *hub) writeLoop(sub *subscriber) {
	for event := range sub.send {
		if err := sub.conn.WriteJSON(event); err != nil {
			h.remove(sub)
			return
		}
	}
	_ = sub.conn.Close()
}

// readLoop exists only to notice the peer going away; inbound frames carry
// no meaning on this endpoint.
func (h *hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.remove(sub)
			return
		}
	}
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.mu.Unlock()
	_ = sub.conn.Close()
}
