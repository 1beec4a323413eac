package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/pkg/events"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// INotificationPublisher hands chat activity to the external notification sender.
// Publishing is best-effort: failures are logged, never returned.
type INotificationPublisher interface {
	PublishMessageSent(ctx context.Context, chat *dto.ChatResponse, message *dto.MessageResponse)
	PublishChatCreated(ctx context.Context, chat *dto.ChatResponse)
}

type notificationPublisher struct {
	publisher EventPublisher
	logger    logger.ILogger
}

func NewNotificationPublisher(publisher EventPublisher, logger logger.ILogger) INotificationPublisher {
	return &notificationPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *notificationPublisher) PublishMessageSent(ctx context.Context, chat *dto.ChatResponse, message *dto.MessageResponse) {
	if p.publisher == nil {
		return
	}

	recipients := lo.FilterMap(chat.Participants, func(id uuid.UUID, _ int) (string, bool) {
		return id.String(), id != message.SenderId
	})
	evt := events.NewChatMessageSent(
		chat.WorkspaceId.String(),
		chat.Id.String(),
		message.Id.String(),
		message.SenderId.String(),
		recipients,
		time.Now(),
	)
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("CHAT", "Failed to publish CHAT_MESSAGE_SENT event", map[string]interface{}{
			"chat_id": chat.Id,
			"error":   err.Error(),
		})
	}
}

func (p *notificationPublisher) PublishChatCreated(ctx context.Context, chat *dto.ChatResponse) {
	if p.publisher == nil {
		return
	}

	participants := lo.Map(chat.Participants, func(id uuid.UUID, _ int) string {
		return id.String()
	})
	evt := events.NewChatCreated(
		chat.WorkspaceId.String(),
		chat.Id.String(),
		chat.CreatedBy.String(),
		participants,
		chat.IsDirectMessage,
		time.Now(),
	)
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("CHAT", "Failed to publish CHAT_CREATED event", map[string]interface{}{
			"chat_id": chat.Id,
			"error":   err.Error(),
		})
	}
}
