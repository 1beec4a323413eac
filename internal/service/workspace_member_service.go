package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/apperror"
	"collab-workspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IWorkspaceMemberService interface {
	UpdatePosition(ctx context.Context, workspaceId, userId uuid.UUID, position entity.Position) error
}

type workspaceMemberService struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewWorkspaceMemberService(uowFactory unitofwork.RepositoryFactory) IWorkspaceMemberService {
	return &workspaceMemberService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// UpdatePosition stores the member's canvas position and refreshes lastActive.
func (s *workspaceMemberService) UpdatePosition(ctx context.Context, workspaceId, userId uuid.UUID, position entity.Position) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.WorkspaceMemberRepository().UpdatePosition(ctx, workspaceId, userId, position, s.now())
	if err != nil {
		return apperror.Internal("failed to update position", err)
	}
	if !found {
		return apperror.Authorization("You are not a member of this workspace")
	}
	return nil
}
