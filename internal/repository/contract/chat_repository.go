package contract

import (
	"context"
	"time"

	"collab-workspace-be/internal/entity"

	"github.com/google/uuid"
)

// ChatRepository finders return (nil, nil) when nothing matches.
type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Chat, error)
	FindByParticipant(ctx context.Context, workspaceId, userId uuid.UUID) ([]*entity.Chat, error)
	FindDirect(ctx context.Context, workspaceId, userA, userB uuid.UUID) (*entity.Chat, error)
	FindByName(ctx context.Context, workspaceId uuid.UUID, name string) (*entity.Chat, error)
	AddParticipant(ctx context.Context, chatId, userId uuid.UUID) (*entity.Chat, error)
	// Touch moves updatedAt forward so recently active chats list first.
	Touch(ctx context.Context, chatId uuid.UUID, at time.Time) error
}
