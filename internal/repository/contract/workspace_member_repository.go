package contract

import (
	"context"
	"time"

	"collab-workspace-be/internal/entity"

	"github.com/google/uuid"
)

type WorkspaceMemberRepository interface {
	Create(ctx context.Context, member *entity.WorkspaceMember) error
	FindByWorkspaceAndUser(ctx context.Context, workspaceId, userId uuid.UUID) (*entity.WorkspaceMember, error)
	FindByWorkspace(ctx context.Context, workspaceId uuid.UUID) ([]*entity.WorkspaceMember, error)
	// UpdatePosition reports false when no membership row exists.
	UpdatePosition(ctx context.Context, workspaceId, userId uuid.UUID, position entity.Position, at time.Time) (bool, error)
}
