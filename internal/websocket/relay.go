package websocket

import (
	"context"
	"encoding/json"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Relay delivers realtime events published on the bus (by REST handlers) to the matching rooms.
type Relay struct {
	subscriber message.Subscriber
	topicName  string
	rooms      *Rooms
	logger     logger.ILogger
}

func NewRelay(subscriber message.Subscriber, topicName string, rooms *Rooms, log logger.ILogger) *Relay {
	return &Relay{
		subscriber: subscriber,
		topicName:  topicName,
		rooms:      rooms,
		logger:     log,
	}
}

// Start subscribes and relays in the background until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			r.deliver(msg)
		}
	}()
	return nil
}

func (r *Relay) deliver(msg *message.Message) {
	// Bad payloads are acked as well; redelivery would not fix them.
	defer msg.Ack()

	var event dto.RealtimeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.logger.Error("Relay", "Failed to decode realtime event", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err.Error(),
		})
		return
	}

	payload := event.Payload
	switch event.Target {
	case dto.TargetChat:
		r.rooms.ToChat(event.TargetId, event.Event, payload)
	case dto.TargetWorkspace:
		r.rooms.ToWorkspace(event.TargetId, event.Event, payload)
	case dto.TargetUser:
		r.rooms.ToUser(event.TargetId, event.Event, payload)
	default:
		r.logger.Warn("Relay", "Unknown realtime target", map[string]interface{}{
			"target": event.Target,
			"event":  event.Event,
		})
	}
}
