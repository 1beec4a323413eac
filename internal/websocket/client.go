package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// FrameHandler receives the lifecycle and inbound frames of a connection.
type FrameHandler interface {
	HandleConnect(connectionID, principal string)
	HandleFrame(ctx context.Context, connectionID string, data []byte)
	HandleDisconnect(ctx context.Context, connectionID string)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	ID        string
	Principal string

	hub     *Hub
	handler FrameHandler
	conn    *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte
}

// ServeWs runs one connection until it closes. It blocks, as fiber's websocket handler requires.
func ServeWs(hub *Hub, handler FrameHandler, conn *websocket.Conn, principal string) {
	client := &Client{
		ID:        uuid.NewString(),
		Principal: principal,
		hub:       hub,
		handler:   handler,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}

	hub.register <- client
	handler.HandleConnect(client.ID, principal)

	go client.writePump()
	client.readPump()
}

// readPump handles frames one at a time, so a connection's events are processed in arrival order.
func (c *Client) readPump() {
	ctx := context.Background()
	defer func() {
		c.handler.HandleDisconnect(ctx, c.ID)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"connection_id": c.ID,
					"error":         err.Error(),
				})
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handler.HandleFrame(ctx, c.ID, data)
	}
}

// writePump writes one frame per websocket message and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
