package unitofwork

import (
	"context"

	"collab-workspace-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
	WorkspaceMemberRepository() contract.WorkspaceMemberRepository
}
