package contract

import (
	"context"

	"collab-workspace-be/internal/entity"

	"github.com/google/uuid"
)

// MessageRepository stores content exactly as given; encryption happens above this layer.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	Update(ctx context.Context, message *entity.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindByChat(ctx context.Context, chatId uuid.UUID) ([]*entity.Message, error)

	// MarkAsRead adds userId to readBy of every message in the chat that lacks it
	// and returns the number of messages changed.
	MarkAsRead(ctx context.Context, chatId, userId uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, chatId, userId uuid.UUID) (int64, error)

	// Summaries returns one entry per chat that has messages, with the raw newest message.
	Summaries(ctx context.Context, chatIds []uuid.UUID, userId uuid.UUID) ([]*entity.ChatSummary, error)
}
