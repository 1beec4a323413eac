package service

import (
	"context"
	"time"

	"collab-workspace-be/internal/pkg/apperror"
	"collab-workspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IAccessService answers membership questions for the realtime router and the REST controllers.
type IAccessService interface {
	IsWorkspaceMember(ctx context.Context, workspaceId, userId uuid.UUID) (bool, error)
	IsChatParticipant(ctx context.Context, chatId, userId uuid.UUID) (bool, error)
}

type accessService struct {
	uowFactory unitofwork.RepositoryFactory
	members    *cache.Cache
}

// NewAccessService caches positive workspace membership answers for ttl.
// Negative answers are never cached so a fresh invitation takes effect immediately.
func NewAccessService(uowFactory unitofwork.RepositoryFactory, ttl time.Duration) IAccessService {
	return &accessService{
		uowFactory: uowFactory,
		members:    cache.New(ttl, 2*ttl),
	}
}

func membershipKey(workspaceId, userId uuid.UUID) string {
	return workspaceId.String() + ":" + userId.String()
}

func (s *accessService) IsWorkspaceMember(ctx context.Context, workspaceId, userId uuid.UUID) (bool, error) {
	key := membershipKey(workspaceId, userId)
	if _, found := s.members.Get(key); found {
		return true, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	member, err := uow.WorkspaceMemberRepository().FindByWorkspaceAndUser(ctx, workspaceId, userId)
	if err != nil {
		return false, apperror.Internal("failed to check workspace membership", err)
	}
	if member == nil {
		return false, nil
	}

	s.members.Set(key, true, cache.DefaultExpiration)
	return true, nil
}

// IsChatParticipant reports false for chats that do not exist.
func (s *accessService) IsChatParticipant(ctx context.Context, chatId, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindByID(ctx, chatId)
	if err != nil {
		return false, apperror.Internal("failed to check chat access", err)
	}
	if chat == nil {
		return false, nil
	}
	return chat.HasParticipant(userId), nil
}
