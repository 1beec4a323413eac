package memory

import (
	"context"
	"testing"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_DirectMessageUnique(t *testing.T) {
	ctx := context.Background()
	uow := NewStore().NewRepositoryFactory().NewUnitOfWork(ctx)
	repo := uow.ChatRepository()

	workspaceId, a, b := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.Create(ctx, &entity.Chat{WorkspaceId: workspaceId, IsDirectMessage: true, Participants: []uuid.UUID{a, b}}))

	err := repo.Create(ctx, &entity.Chat{WorkspaceId: workspaceId, IsDirectMessage: true, Participants: []uuid.UUID{b, a}})
	assert.ErrorIs(t, err, contract.ErrDuplicate)

	// Same pair in another workspace is a different chat.
	assert.NoError(t, repo.Create(ctx, &entity.Chat{WorkspaceId: uuid.New(), IsDirectMessage: true, Participants: []uuid.UUID{a, b}}))

	found, err := repo.FindDirect(ctx, workspaceId, b, a)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, found.Participants)
}

func TestChatRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().NewRepositoryFactory().NewUnitOfWork(ctx).ChatRepository()

	a := uuid.New()
	chat := &entity.Chat{WorkspaceId: uuid.New(), Participants: []uuid.UUID{a, a}}
	require.NoError(t, repo.Create(ctx, chat))

	got, err := repo.FindByID(ctx, chat.Id)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 1)

	got.Participants[0] = uuid.New()
	again, _ := repo.FindByID(ctx, chat.Id)
	assert.Equal(t, a, again.Participants[0])

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessageRepository_MarkAsReadAndSummaries(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().NewRepositoryFactory().NewUnitOfWork(ctx).MessageRepository()

	chatId, sender, reader := uuid.New(), uuid.New(), uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Message{
			ChatId:    chatId,
			SenderId:  sender,
			Content:   "envelope",
			ReadBy:    []uuid.UUID{sender},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	unread, err := repo.CountUnread(ctx, chatId, reader)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	modified, err := repo.MarkAsRead(ctx, chatId, reader)
	require.NoError(t, err)
	assert.Equal(t, int64(3), modified)

	modified, err = repo.MarkAsRead(ctx, chatId, reader)
	require.NoError(t, err)
	assert.Zero(t, modified)

	summaries, err := repo.Summaries(ctx, []uuid.UUID{chatId, chatId, uuid.New()}, reader)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(3), summaries[0].MessageCount)
	assert.Zero(t, summaries[0].UnreadCount)
	assert.Equal(t, base.Add(2*time.Minute), summaries[0].LastMessage.CreatedAt)
}

func TestWorkspaceMemberRepository_UpdatePosition(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().NewRepositoryFactory().NewUnitOfWork(ctx).WorkspaceMemberRepository()

	workspaceId, userId := uuid.New(), uuid.New()
	require.NoError(t, repo.Create(ctx, &entity.WorkspaceMember{WorkspaceId: workspaceId, UserId: &userId, Email: "a@example.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.WorkspaceMember{WorkspaceId: workspaceId, UserId: &userId}), contract.ErrDuplicate)

	at := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	ok, err := repo.UpdatePosition(ctx, workspaceId, userId, entity.Position{X: 10, Y: 20}, at)
	require.NoError(t, err)
	assert.True(t, ok)

	member, err := repo.FindByWorkspaceAndUser(ctx, workspaceId, userId)
	require.NoError(t, err)
	require.NotNil(t, member.CurrentPosition)
	assert.Equal(t, entity.Position{X: 10, Y: 20}, *member.CurrentPosition)
	assert.Equal(t, at, member.LastActive)

	ok, err = repo.UpdatePosition(ctx, workspaceId, uuid.New(), entity.Position{}, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnitOfWork_RollbackUndoesOnlyItsOwnWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewStore().NewRepositoryFactory()

	workspaceId, a, b := uuid.New(), uuid.New(), uuid.New()
	seed := &entity.Chat{WorkspaceId: workspaceId, Participants: []uuid.UUID{a}}
	require.NoError(t, factory.NewUnitOfWork(ctx).ChatRepository().Create(ctx, seed))

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	assert.Error(t, tx.Begin(ctx))

	inTx := &entity.Chat{WorkspaceId: workspaceId, Participants: []uuid.UUID{a}}
	require.NoError(t, tx.ChatRepository().Create(ctx, inTx))
	_, err := tx.ChatRepository().AddParticipant(ctx, seed.Id, b)
	require.NoError(t, err)

	// Committed by someone else while tx is open.
	other := &entity.Chat{WorkspaceId: workspaceId, Participants: []uuid.UUID{b}}
	require.NoError(t, factory.NewUnitOfWork(ctx).ChatRepository().Create(ctx, other))

	require.NoError(t, tx.Rollback())
	assert.Error(t, tx.Rollback())

	repo := factory.NewUnitOfWork(ctx).ChatRepository()
	gone, _ := repo.FindByID(ctx, inTx.Id)
	assert.Nil(t, gone)
	restored, _ := repo.FindByID(ctx, seed.Id)
	assert.Equal(t, []uuid.UUID{a}, restored.Participants)
	kept, _ := repo.FindByID(ctx, other.Id)
	assert.NotNil(t, kept)
}

func TestUnitOfWork_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewStore().NewRepositoryFactory()

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	msg := &entity.Message{ChatId: uuid.New(), SenderId: uuid.New(), Content: "envelope"}
	require.NoError(t, tx.MessageRepository().Create(ctx, msg))
	require.NoError(t, tx.Commit())
	assert.Error(t, tx.Rollback(), "rollback after commit is a no-op error")

	got, err := factory.NewUnitOfWork(ctx).MessageRepository().FindByID(ctx, msg.Id)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestChatRepository_TouchAndGeneralChat(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().NewRepositoryFactory().NewUnitOfWork(ctx).ChatRepository()

	workspaceId, a := uuid.New(), uuid.New()
	name := entity.GeneralChatName
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	general := &entity.Chat{WorkspaceId: workspaceId, Name: &name, Participants: []uuid.UUID{a}, CreatedAt: base}
	require.NoError(t, repo.Create(ctx, general))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Chat{WorkspaceId: workspaceId, Name: &name}), contract.ErrDuplicate)
	assert.NoError(t, repo.Create(ctx, &entity.Chat{WorkspaceId: uuid.New(), Name: &name}))

	other := "design"
	side := &entity.Chat{WorkspaceId: workspaceId, Name: &other, Participants: []uuid.UUID{a}, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, side))

	found, err := repo.FindByName(ctx, workspaceId, entity.GeneralChatName)
	require.NoError(t, err)
	assert.Equal(t, general.Id, found.Id)

	chats, err := repo.FindByParticipant(ctx, workspaceId, a)
	require.NoError(t, err)
	assert.Equal(t, side.Id, chats[0].Id)

	require.NoError(t, repo.Touch(ctx, general.Id, base.Add(time.Hour)))
	chats, err = repo.FindByParticipant(ctx, workspaceId, a)
	require.NoError(t, err)
	assert.Equal(t, general.Id, chats[0].Id)
	assert.Equal(t, base.Add(time.Hour), *chats[0].UpdatedAt)
}
