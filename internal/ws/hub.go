package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/logger"
)

type unicast struct {
	userID  string
	payload []byte
}

// Hub tracks live connections and fans events out to them.
type Hub struct {
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	unicast    chan unicast
	done       chan struct{}
	stopOnce   sync.Once
}

var _ Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		unicast:    make(chan unicast, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case payload := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			h.deliver(targets, payload)
		case msg := <-h.unicast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.byUser[msg.userID]))
			for c := range h.byUser[msg.userID] {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			h.deliver(targets, msg.payload)
		}
	}
}

// Stop terminates Run and closes every connection.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// deliver never blocks: a client with a full buffer is disconnected.
func (h *Hub) deliver(targets []*Client, payload []byte) {
	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			logger.Log.Warn("ws client too slow, dropping", logger.WithUserID(c.userID))
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if c.userID != "" {
		if h.byUser[c.userID] == nil {
			h.byUser[c.userID] = make(map[*Client]struct{})
		}
		h.byUser[c.userID][c] = struct{}{}
	}
	logger.Log.Debug("ws client connected",
		logger.WithUserID(c.userID),
		zap.Int("connections", len(h.clients)),
	)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set, ok := h.byUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[*Client]struct{})
	h.byUser = make(map[string]map[*Client]struct{})
}

// Broadcast queues event for every connection. It drops the event when the
// hub queue is full.
func (h *Hub) Broadcast(event Event) {
	payload, err := event.encode()
	if err != nil {
		logger.ErrorWithFields("Error marshalling WS event", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		logger.Log.Warn("ws broadcast queue full, dropping event", zap.String("type", event.Type))
	}
}

// SendToUser queues event for every connection of userID.
func (h *Hub) SendToUser(userID string, event Event) {
	if userID == "" {
		return
	}
	payload, err := event.encode()
	if err != nil {
		logger.ErrorWithFields("Error marshalling WS event", err)
		return
	}
	select {
	case h.unicast <- unicast{userID: userID, payload: payload}:
	default:
		logger.Log.Warn("ws unicast queue full, dropping event",
			zap.String("type", event.Type), logger.WithUserID(userID))
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserOnline reports whether userID has at least one connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}
