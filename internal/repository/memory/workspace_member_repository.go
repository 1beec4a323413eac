package memory

import (
	"context"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/contract"

	"github.com/google/uuid"
)

type workspaceMemberRepository struct {
	store *Store
	uow   *unitOfWork
}

func (r *workspaceMemberRepository) Create(ctx context.Context, member *entity.WorkspaceMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if member.UserId != nil {
		if r.find(member.WorkspaceId, *member.UserId) != nil {
			return contract.ErrDuplicate
		}
	}
	if member.Id == uuid.Nil {
		member.Id = uuid.New()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	if member.LastActive.IsZero() {
		member.LastActive = member.CreatedAt
	}
	r.uow.rememberMember(member.Id)
	r.store.members[member.Id] = cloneMember(member)
	return nil
}

func (r *workspaceMemberRepository) FindByWorkspaceAndUser(ctx context.Context, workspaceId, userId uuid.UUID) (*entity.WorkspaceMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneMember(r.find(workspaceId, userId)), nil
}

func (r *workspaceMemberRepository) FindByWorkspace(ctx context.Context, workspaceId uuid.UUID) ([]*entity.WorkspaceMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.WorkspaceMember
	for _, m := range r.store.members {
		if m.WorkspaceId == workspaceId {
			out = append(out, cloneMember(m))
		}
	}
	return out, nil
}

func (r *workspaceMemberRepository) UpdatePosition(ctx context.Context, workspaceId, userId uuid.UUID, position entity.Position, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := r.find(workspaceId, userId)
	if m == nil {
		return false, nil
	}
	r.uow.rememberMember(m.Id)
	p := position
	m.CurrentPosition = &p
	m.LastActive = at
	return true, nil
}

func (r *workspaceMemberRepository) find(workspaceId, userId uuid.UUID) *entity.WorkspaceMember {
	for _, m := range r.store.members {
		if m.WorkspaceId == workspaceId && m.UserId != nil && *m.UserId == userId {
			return m
		}
	}
	return nil
}
