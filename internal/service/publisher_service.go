package service

import (
	"context"
	"encoding/json"

	"collab-workspace-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService puts realtime notifications produced outside a websocket
// connection (REST mutations) on the in-process bus; the websocket relay delivers them.
type IPublisherService interface {
	PublishRealtime(ctx context.Context, event *dto.RealtimeEvent) error
	ToChat(ctx context.Context, chatId string, event string, payload interface{})
	ToWorkspace(ctx context.Context, workspaceId string, event string, payload interface{})
	ToUser(ctx context.Context, userId string, event string, payload interface{})
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

func NewPublisherService(topicName string, publisher message.Publisher, logger watermill.LoggerAdapter) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    logger,
	}
}

func (ps *publisherService) PublishRealtime(ctx context.Context, event *dto.RealtimeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

func (ps *publisherService) ToChat(ctx context.Context, chatId string, event string, payload interface{}) {
	ps.publish(ctx, dto.TargetChat, chatId, event, payload)
}

func (ps *publisherService) ToWorkspace(ctx context.Context, workspaceId string, event string, payload interface{}) {
	ps.publish(ctx, dto.TargetWorkspace, workspaceId, event, payload)
}

func (ps *publisherService) ToUser(ctx context.Context, userId string, event string, payload interface{}) {
	ps.publish(ctx, dto.TargetUser, userId, event, payload)
}

// publish is best-effort: the write already succeeded, realtime delivery is a convenience.
func (ps *publisherService) publish(ctx context.Context, target, targetId, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		ps.logger.Error("Failed to marshal realtime payload", err, watermill.LogFields{"event": event})
		return
	}

	err = ps.PublishRealtime(ctx, &dto.RealtimeEvent{
		Event:    event,
		Target:   target,
		TargetId: targetId,
		Payload:  data,
	})
	if err != nil {
		ps.logger.Error("Failed to publish realtime event", err, watermill.LogFields{"event": event, "target": target})
	}
}
