package websocket

import (
	"encoding/json"
	"testing"

	"collab-workspace-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_EmitQueuesFrame(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	client := &Client{ID: "c1", Principal: "alice", send: make(chan []byte, 1)}
	hub.clients[client.ID] = client

	hub.Emit("c1", EventChatJoined, map[string]string{"chatId": "x"})
	hub.Emit("c1", EventChatLeft, map[string]string{"chatId": "x"})
	hub.Emit("unknown", EventChatJoined, nil)

	require.Len(t, client.send, 1, "frames beyond the buffer are dropped")

	var frame Frame
	require.NoError(t, json.Unmarshal(<-client.send, &frame))
	assert.Equal(t, EventChatJoined, frame.Event)
	assert.JSONEq(t, `{"chatId":"x"}`, string(frame.Data))
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	go hub.Run()

	client := &Client{ID: "c1", Principal: "alice", send: make(chan []byte, 1)}
	hub.register <- client
	hub.unregister <- client
	hub.unregister <- client

	_, open := <-client.send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Len())
}
