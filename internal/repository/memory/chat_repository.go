package memory

import (
	"context"
	"sort"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type chatRepository struct {
	store *Store
	uow   *unitOfWork
}

func (r *chatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.conflicts(chat) {
		return contract.ErrDuplicate
	}

	if chat.Id == uuid.Nil {
		chat.Id = uuid.New()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	updated := chat.CreatedAt
	chat.UpdatedAt = &updated
	chat.Participants = lo.Uniq(chat.Participants)
	r.uow.rememberChat(chat.Id)
	r.store.chats[chat.Id] = cloneChat(chat)
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Chat, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneChat(r.store.chats[id]), nil
}

func (r *chatRepository) FindByParticipant(ctx context.Context, workspaceId, userId uuid.UUID) ([]*entity.Chat, error) {
	chats := r.filter(func(c *entity.Chat) bool {
		return c.WorkspaceId == workspaceId && c.HasParticipant(userId)
	})
	sort.SliceStable(chats, func(i, j int) bool {
		return lastActivity(chats[i]).After(lastActivity(chats[j]))
	})
	return chats, nil
}

func (r *chatRepository) FindDirect(ctx context.Context, workspaceId, userA, userB uuid.UUID) (*entity.Chat, error) {
	chats := r.filter(func(c *entity.Chat) bool {
		return c.WorkspaceId == workspaceId && c.IsDirectMessage && len(c.Participants) == 2 &&
			c.HasParticipant(userA) && c.HasParticipant(userB)
	})
	if len(chats) == 0 {
		return nil, nil
	}
	return chats[0], nil
}

func (r *chatRepository) FindByName(ctx context.Context, workspaceId uuid.UUID, name string) (*entity.Chat, error) {
	chats := r.filter(func(c *entity.Chat) bool {
		return c.WorkspaceId == workspaceId && !c.IsDirectMessage && c.Name != nil && *c.Name == name
	})
	if len(chats) == 0 {
		return nil, nil
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].CreatedAt.Before(chats[j].CreatedAt)
	})
	return chats[0], nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, chatId, userId uuid.UUID) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	chat, ok := r.store.chats[chatId]
	if !ok {
		return nil, nil
	}
	if !chat.HasParticipant(userId) {
		r.uow.rememberChat(chatId)
		chat.Participants = append(chat.Participants, userId)
		now := time.Now()
		chat.UpdatedAt = &now
	}
	return cloneChat(chat), nil
}

func (r *chatRepository) Touch(ctx context.Context, chatId uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if chat, ok := r.store.chats[chatId]; ok {
		r.uow.rememberChat(chatId)
		touched := at
		chat.UpdatedAt = &touched
	}
	return nil
}

// conflicts mirrors the Postgres unique indexes: one direct chat per pair and one
// general chat per workspace. The caller holds the lock.
func (r *chatRepository) conflicts(chat *entity.Chat) bool {
	for _, existing := range r.store.chats {
		if existing.WorkspaceId != chat.WorkspaceId || existing.IsDirectMessage != chat.IsDirectMessage {
			continue
		}
		if chat.IsDirectMessage && len(chat.Participants) == 2 && len(existing.Participants) == 2 &&
			entity.DirectKey(existing.Participants[0], existing.Participants[1]) == entity.DirectKey(chat.Participants[0], chat.Participants[1]) {
			return true
		}
		if isGeneral(chat) && isGeneral(existing) {
			return true
		}
	}
	return false
}

func isGeneral(c *entity.Chat) bool {
	return !c.IsDirectMessage && c.Name != nil && *c.Name == entity.GeneralChatName
}

func lastActivity(c *entity.Chat) time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

func (r *chatRepository) filter(match func(c *entity.Chat) bool) []*entity.Chat {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Chat
	for _, c := range r.store.chats {
		if match(c) {
			out = append(out, cloneChat(c))
		}
	}
	return out
}
