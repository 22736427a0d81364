package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/infra/metrics"
)

const (
	// Time allowed to write a message or ping to a client.
	writeWait = 10 * time.Second

	// A client must answer a ping within this window or its reader times out.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients never send payloads; anything beyond a control-sized frame gets
	// the connection closed.
	maxMessageSize = 512

	// Outbound queue per client. A client that falls this far behind is dropped.
	sendBuffer = 256
)

// client pairs a connection with its outbound queue. All writes to the
// connection happen on its single writeLoop goroutine.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans webhook-derived push messages out to every connected websocket
// client. No buffering or replay: a client that connects late simply misses
// earlier messages.
type Hub struct {
	log *zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub(log *zerolog.Logger) *Hub {
	return &Hub{log: log, clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Add(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[conn] = c
	n := len(h.clients)
	h.mu.Unlock()
	go c.writeLoop()
	metrics.SetRelayClients(n)
	h.log.Info().Int("clients", n).Msg("client connected")
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = conn.Close()
	metrics.SetRelayClients(n)
	h.log.Info().Int("clients", n).Msg("client disconnected")
}

// Broadcast queues msg for every client and returns the number of clients it
// reached. Enqueueing happens under the hub lock, so a send never races a
// Remove closing the queue. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(msg []byte) int {
	h.mu.Lock()
	var full []*websocket.Conn
	sent := 0
	for conn, c := range h.clients {
		select {
		case c.send <- msg:
			sent++
		default:
			full = append(full, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range full {
		h.log.Warn().Msg("dropping client that stopped draining")
		h.Remove(conn)
	}
	metrics.AddRelayPushed(sent)
	return sent
}
