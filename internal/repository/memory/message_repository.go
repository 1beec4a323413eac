package memory

import (
	"context"
	"sort"
	"time"

	"collab-workspace-be/internal/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type messageRepository struct {
	store *Store
	uow   *unitOfWork
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.ReadBy = lo.Uniq(message.ReadBy)
	r.uow.rememberMessage(message.Id)
	r.store.messages[message.Id] = cloneMessage(message)
	return nil
}

func (r *messageRepository) Update(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.messages[message.Id]; !ok {
		return nil
	}
	r.uow.rememberMessage(message.Id)
	now := time.Now()
	message.UpdatedAt = &now
	r.store.messages[message.Id] = cloneMessage(message)
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.uow.rememberMessage(id)
	delete(r.store.messages, id)
	return nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneMessage(r.store.messages[id]), nil
}

func (r *messageRepository) FindByChat(ctx context.Context, chatId uuid.UUID) ([]*entity.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.byChat(chatId), nil
}

func (r *messageRepository) MarkAsRead(ctx context.Context, chatId, userId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var modified int64
	for _, m := range r.store.messages {
		if m.ChatId == chatId && !m.IsReadBy(userId) {
			r.uow.rememberMessage(m.Id)
			m.ReadBy = append(m.ReadBy, userId)
			modified++
		}
	}
	return modified, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, chatId, userId uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	unread := lo.CountBy(r.byChat(chatId), func(m *entity.Message) bool {
		return !m.IsReadBy(userId)
	})
	return int64(unread), nil
}

func (r *messageRepository) Summaries(ctx context.Context, chatIds []uuid.UUID, userId uuid.UUID) ([]*entity.ChatSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summaries := make([]*entity.ChatSummary, 0, len(chatIds))
	for _, chatId := range lo.Uniq(chatIds) {
		messages := r.byChat(chatId)
		if len(messages) == 0 {
			continue
		}
		summaries = append(summaries, &entity.ChatSummary{
			ChatId:       chatId,
			LastMessage:  messages[len(messages)-1],
			MessageCount: int64(len(messages)),
			UnreadCount: int64(lo.CountBy(messages, func(m *entity.Message) bool {
				return !m.IsReadBy(userId)
			})),
		})
	}
	return summaries, nil
}

// byChat returns copies ordered by creation time; the caller holds the lock.
func (r *messageRepository) byChat(chatId uuid.UUID) []*entity.Message {
	var out []*entity.Message
	for _, m := range r.store.messages {
		if m.ChatId == chatId {
			out = append(out, cloneMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
