package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherService_ToChat(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	busLogger := logger.NewWatermillAdapter(logger.NewNopLogger())
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, busLogger)
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, "chat_events")
	require.NoError(t, err)

	publisher := NewPublisherService("chat_events", pubSub, busLogger)
	chatId := uuid.New()
	publisher.ToChat(ctx, chatId.String(), "messages-read", map[string]string{"chatId": chatId.String()})

	select {
	case msg := <-messages:
		var evt dto.RealtimeEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &evt))
		assert.Equal(t, "messages-read", evt.Event)
		assert.Equal(t, dto.TargetChat, evt.Target)
		assert.Equal(t, chatId.String(), evt.TargetId)
		assert.JSONEq(t, `{"chatId":"`+chatId.String()+`"}`, string(evt.Payload))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("event was not published")
	}
}

type recordingEventPublisher struct {
	events []events.Event
}

func (p *recordingEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func TestNotificationPublisher_MessageSentExcludesSender(t *testing.T) {
	sink := &recordingEventPublisher{}
	notifier := NewNotificationPublisher(sink, logger.NewNopLogger())

	sender, other := uuid.New(), uuid.New()
	chat := &dto.ChatResponse{Id: uuid.New(), WorkspaceId: uuid.New(), Participants: []uuid.UUID{sender, other}}
	notifier.PublishMessageSent(context.Background(), chat, &dto.MessageResponse{Id: uuid.New(), SenderId: sender, Content: "never forwarded"})

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, events.ChatMessageSent, evt.EventType())
	assert.Equal(t, []string{other.String()}, evt.Payload()["recipients"])
	assert.NotContains(t, evt.Payload(), "content")
}

func TestNotificationPublisher_NilPublisherIsNoop(t *testing.T) {
	notifier := NewNotificationPublisher(nil, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		notifier.PublishChatCreated(context.Background(), &dto.ChatResponse{Id: uuid.New()})
	})
}
