package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/gorilla/websocket"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tunables
// ──────────────────────────────────────────────────────────────────────────────

const (
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
	pongWait       = 35 * time.Second // must be > pingInterval
	maxMessageSize = 512              // bytes; clients only send pongs
	sendBufferSize = 256              // messages in each client send channel
)

// ──────────────────────────────────────────────────────────────────────────────
// Client
// ──────────────────────────────────────────────────────────────────────────────

// Client represents one connected WebSocket endpoint, subscribed to updates
// for a single post. Bettors carry no account here — the connection is
// identified only by which post it is watching.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	postID uint64
}

// ──────────────────────────────────────────────────────────────────────────────
// Hub
// ──────────────────────────────────────────────────────────────────────────────

// Hub maintains the set of active clients, indexed by the post they are
// watching, and routes broadcast messages to only that post's watchers.
// Run() must be called in a dedicated goroutine before ServeWs is used.
type Hub struct {
	mu       sync.RWMutex
	byPost   map[uint64]map[*Client]bool

	broadcast  chan postMessage
	register   chan *Client
	unregister chan *Client

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type postMessage struct {
	postID uint64
	data   []byte
}

// NewHub creates a Hub ready to be started with Run().
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	return &Hub{
		byPost:     make(map[uint64]map[*Client]bool),
		broadcast:  make(chan postMessage, 512),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true // dev mode: allow all
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Run — hub event loop
// ──────────────────────────────────────────────────────────────────────────────

// Run processes registration, unregistration, and broadcast events
// sequentially. Call it once as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.byPost[client.postID] == nil {
				h.byPost[client.postID] = make(map[*Client]bool)
			}
			h.byPost[client.postID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.byPost[client.postID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
					if len(set) == 0 {
						delete(h.byPost, client.postID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.byPost[msg.postID] {
				select {
				case client.send <- msg.data:
				default:
					// Client's buffer full — drop the message for this client.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ConnectedCount returns the current number of connected clients across all posts.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.byPost {
		n += len(set)
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// ServeWs — HTTP → WebSocket upgrade
// ──────────────────────────────────────────────────────────────────────────────

// ServeWs upgrades an HTTP request to a WebSocket connection subscribed to
// the post named by the ?post_id= query parameter.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseUint(r.URL.Query().Get("post_id"), 10, 64)
	if err != nil {
		http.Error(w, "post_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws.ServeWs: upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		postID: postID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// ──────────────────────────────────────────────────────────────────────────────
// Client pumps
// ──────────────────────────────────────────────────────────────────────────────

// writePump drains the client's send channel and writes messages to the
// WebSocket connection. It also sends ping frames every pingInterval.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the WebSocket connection. Only pong messages
// are handled (they reset the read deadline). All other inbound messages are
// discarded — this is a server-push-only protocol.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("ws.readPump: unexpected close", "post_id", c.postID, "error", err)
			}
			return
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Broadcast helpers — implement service.Broadcaster and
// service.TabulationBroadcaster
// ──────────────────────────────────────────────────────────────────────────────

// BroadcastBetPlaced satisfies service.Broadcaster.
func (h *Hub) BroadcastBetPlaced(postID uint64, mirror domain.PlacedBetDetail) {
	h.broadcastJSON(postID, BetPlacedMessage{
		Type:      MsgTypeBetPlaced,
		PostID:    postID,
		SlotID:    mirror.SlotID,
		RoomID:    mirror.RoomID,
		Amount:    mirror.Amount,
		Direction: mirror.Direction,
		Timestamp: time.Now().UTC(),
	})
}

// BroadcastSlotTabulated satisfies service.TabulationBroadcaster.
func (h *Hub) BroadcastSlotTabulated(postID uint64, slotID uint8, payouts []domain.RoomPayout) {
	rooms := make([]RoomResult, 0, len(payouts))
	for _, p := range payouts {
		rooms = append(rooms, RoomResult{
			RoomID:      p.RoomID,
			Outcome:     p.Outcome,
			Commission:  p.Commission,
			BettorCount: len(p.Bets),
		})
	}
	h.broadcastJSON(postID, SlotTabulatedMessage{
		Type:      MsgTypeSlotTabulated,
		PostID:    postID,
		SlotID:    slotID,
		Rooms:     rooms,
		Timestamp: time.Now().UTC(),
	})
}

// broadcastJSON is the common marshalling path.
func (h *Hub) broadcastJSON(postID uint64, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("ws.Hub: marshal error", "error", err)
		return
	}
	select {
	case h.broadcast <- postMessage{postID: postID, data: data}:
	default:
		h.logger.Warn("ws.Hub: broadcast channel full, message dropped", "post_id", postID)
	}
}

// SendError writes an error message directly to one client's send channel.
func (h *Hub) SendError(client *Client, code, message string) {
	data, err := json.Marshal(ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}
