package websocket

import (
	"encoding/json"
	"sync"

	"collab-workspace-be/internal/pkg/logger"
)

// Emitter delivers one outbound event to one connection.
type Emitter interface {
	Emit(connectionID string, event string, payload interface{})
}

// Hub owns the live clients keyed by connection id.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"connection_id": client.ID,
				"user_id":       client.Principal,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
				"connection_id": client.ID,
				"user_id":       client.Principal,
			})
		}
	}
}

// Emit queues the frame on the client's buffer. A full buffer drops the frame; delivery is best effort.
func (h *Hub) Emit(connectionID string, event string, payload interface{}) {
	data, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode outbound frame", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{
			"connection_id": connectionID,
			"event":         event,
		})
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type outboundFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
