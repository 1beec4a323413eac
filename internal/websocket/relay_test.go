package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/service"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_DeliversToTargetRooms(t *testing.T) {
	nop := logger.NewNopLogger()
	adapter := logger.NewWatermillAdapter(nop)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, adapter)
	defer pubSub.Close()

	registry := NewRegistry()
	registry.AddConnection("a1", "alice")
	registry.AddConnection("b1", "bob")
	registry.JoinChat("a1", "chat-1")
	registry.SetWorkspace("b1", "ws-1")

	emitter := &recordingEmitter{}
	relay := NewRelay(pubSub, "realtime", NewRooms(registry, emitter), nop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, relay.Start(ctx))

	publisher := service.NewPublisherService("realtime", pubSub, adapter)
	publisher.ToChat(ctx, "chat-1", EventNewMessage, map[string]string{"content": "hi"})
	publisher.ToWorkspace(ctx, "ws-1", EventNewChat, map[string]string{"id": "chat-2"})
	publisher.ToUser(ctx, "alice", EventUserAdded, map[string]string{"chatId": "chat-3"})

	require.Eventually(t, func() bool {
		return len(emitter.to("a1")) == 2 && len(emitter.to("b1")) == 1
	}, time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []string{EventNewMessage, EventUserAdded}, emitter.events("a1"))
	assert.Equal(t, []string{EventNewChat}, emitter.events("b1"))

	payload, _ := emitter.last("a1", EventNewMessage)
	assert.JSONEq(t, `{"content":"hi"}`, string(payload.(json.RawMessage)))
}
