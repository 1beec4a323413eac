package memory

import (
	"context"
	"fmt"
	"sync"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store keeps chats, messages and workspace memberships in process memory.
// It backs the memory storage driver and stands in for Postgres in tests.
type Store struct {
	mu       sync.RWMutex
	chats    map[uuid.UUID]*entity.Chat
	messages map[uuid.UUID]*entity.Message
	members  map[uuid.UUID]*entity.WorkspaceMember
}

func NewStore() *Store {
	return &Store{
		chats:    make(map[uuid.UUID]*entity.Chat),
		messages: make(map[uuid.UUID]*entity.Message),
		members:  make(map[uuid.UUID]*entity.WorkspaceMember),
	}
}

// NewRepositoryFactory hands out units of work sharing this store.
func (s *Store) NewRepositoryFactory() unitofwork.RepositoryFactory {
	return &repositoryFactory{store: s}
}

type repositoryFactory struct {
	store *Store
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork is atomic but not isolated: writes are visible to everyone as soon as they
// return. Inside a transaction every write records how to undo itself, and Rollback
// replays those records newest first, leaving other units' writes alone.
type unitOfWork struct {
	store *Store
	inTx  bool
	undo  []func()
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.inTx, u.undo = false, nil
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.store.mu.Unlock()

	u.inTx, u.undo = false, nil
	return nil
}

func (u *unitOfWork) ChatRepository() contract.ChatRepository {
	return &chatRepository{store: u.store, uow: u}
}

func (u *unitOfWork) MessageRepository() contract.MessageRepository {
	return &messageRepository{store: u.store, uow: u}
}

func (u *unitOfWork) WorkspaceMemberRepository() contract.WorkspaceMemberRepository {
	return &workspaceMemberRepository{store: u.store, uow: u}
}

// The remember* helpers run with the store lock held, before the write they guard.

func (u *unitOfWork) rememberChat(id uuid.UUID) {
	if !u.inTx {
		return
	}
	prev := cloneChat(u.store.chats[id])
	u.undo = append(u.undo, func() {
		if prev == nil {
			delete(u.store.chats, id)
			return
		}
		u.store.chats[id] = prev
	})
}

func (u *unitOfWork) rememberMessage(id uuid.UUID) {
	if !u.inTx {
		return
	}
	prev := cloneMessage(u.store.messages[id])
	u.undo = append(u.undo, func() {
		if prev == nil {
			delete(u.store.messages, id)
			return
		}
		u.store.messages[id] = prev
	})
}

func (u *unitOfWork) rememberMember(id uuid.UUID) {
	if !u.inTx {
		return
	}
	prev := cloneMember(u.store.members[id])
	u.undo = append(u.undo, func() {
		if prev == nil {
			delete(u.store.members, id)
			return
		}
		u.store.members[id] = prev
	})
}

func cloneChat(c *entity.Chat) *entity.Chat {
	if c == nil {
		return nil
	}
	out := *c
	out.Participants = append([]uuid.UUID(nil), c.Participants...)
	return &out
}

func cloneMessage(m *entity.Message) *entity.Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Attachments = append([]string(nil), m.Attachments...)
	out.ReadBy = append([]uuid.UUID(nil), m.ReadBy...)
	return &out
}

func cloneMember(m *entity.WorkspaceMember) *entity.WorkspaceMember {
	if m == nil {
		return nil
	}
	out := *m
	if m.CurrentPosition != nil {
		p := *m.CurrentPosition
		out.CurrentPosition = &p
	}
	return &out
}
