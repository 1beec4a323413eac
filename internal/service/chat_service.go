package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/apperror"
	"collab-workspace-be/internal/pkg/encryption"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	UnreadableMessagePlaceholder = "message unreadable"
	DeletedMessageTombstone      = "[Message deleted]"

	onlineThreshold = 10 * time.Minute
)

// MessageCodec is satisfied by *encryption.Codec.
type MessageCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

type IChatService interface {
	CreateChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	GetUserChats(ctx context.Context, workspaceId, userId uuid.UUID) ([]*dto.ChatResponse, error)
	GetChatByID(ctx context.Context, chatId, userId uuid.UUID) (*dto.ChatResponse, error)
	AddUserToChat(ctx context.Context, chatId, userId uuid.UUID) (*dto.ChatResponse, error)
	EnsureGeneralChat(ctx context.Context, workspaceId, creatorId uuid.UUID, members []uuid.UUID) (*dto.ChatResponse, bool, error)
	AddMemberToGeneralChat(ctx context.Context, workspaceId, userId uuid.UUID) (*dto.ChatResponse, error)
	GetOrCreateDirectMessage(ctx context.Context, workspaceId, userA, userB uuid.UUID) (*dto.ChatResponse, bool, error)

	SendMessage(ctx context.Context, chatId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, *dto.ChatResponse, error)
	GetChatMessages(ctx context.Context, chatId, userId uuid.UUID) ([]*dto.MessageResponse, int64, error)
	GetMessageByID(ctx context.Context, messageId, userId uuid.UUID) (*dto.MessageResponse, error)
	UpdateMessage(ctx context.Context, messageId, userId uuid.UUID, content string) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageId, userId uuid.UUID) (*dto.DeleteMessageResponse, error)
	SoftDeleteMessage(ctx context.Context, messageId, userId uuid.UUID) (*dto.MessageResponse, error)

	MarkMessagesAsRead(ctx context.Context, chatId, userId uuid.UUID) (int64, error)
	GetWorkspaceChatOverview(ctx context.Context, workspaceId, userId uuid.UUID) (*dto.ChatOverviewResponse, error)
}

// chatService is the only component that touches message content in both forms.
// Writes go through sealContent, reads through openContent.
type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	codec      MessageCodec
	notifier   INotificationPublisher
	logger     logger.ILogger
	editWindow time.Duration
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	codec MessageCodec,
	notifier INotificationPublisher,
	logger logger.ILogger,
	editWindow time.Duration,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		codec:      codec,
		notifier:   notifier,
		logger:     logger,
		editWindow: editWindow,
		now:        time.Now,
	}
}

// sealContent encrypts content that is about to be written. Input that merely looks
// like an envelope is still encrypted; only openContent trusts the envelope shape.
func (s *chatService) sealContent(content string) (string, error) {
	sealed, err := s.codec.Encrypt(content)
	if err != nil {
		return "", apperror.Internal("failed to encrypt message", err)
	}
	return sealed, nil
}

// openContent never fails: rows that do not decrypt are replaced by the placeholder.
func (s *chatService) openContent(messageId uuid.UUID, content string) string {
	if !encryption.IsEncrypted(content) {
		return content
	}
	plaintext, err := s.codec.Decrypt(content)
	if err != nil {
		s.logger.Error("CHAT", "Failed to decrypt message content", map[string]interface{}{
			"message_id": messageId,
			"error":      apperror.Decryption(err).Error(),
		})
		return UnreadableMessagePlaceholder
	}
	return plaintext
}

func (s *chatService) toMessageResponse(m *entity.Message) *dto.MessageResponse {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return &dto.MessageResponse{
		Id:          m.Id,
		ChatId:      m.ChatId,
		SenderId:    m.SenderId,
		Content:     s.openContent(m.Id, m.Content),
		Attachments: attachments,
		ReadBy:      m.ReadBy,
		IsEdited:    m.IsEdited,
		IsDeleted:   m.IsDeleted,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toChatResponse(c *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:              c.Id,
		WorkspaceId:     c.WorkspaceId,
		Name:            c.Name,
		IsDirectMessage: c.IsDirectMessage,
		Participants:    c.Participants,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// participantChat loads a chat and checks that userId takes part in it.
func (s *chatService) participantChat(ctx context.Context, uow unitofwork.UnitOfWork, chatId, userId uuid.UUID) (*entity.Chat, error) {
	chat, err := uow.ChatRepository().FindByID(ctx, chatId)
	if err != nil {
		return nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	if !chat.HasParticipant(userId) {
		return nil, apperror.Authorization("You don't have access to this chat")
	}
	return chat, nil
}

// ownedMessage loads a message and checks that userId sent it.
func (s *chatService) ownedMessage(ctx context.Context, uow unitofwork.UnitOfWork, messageId, userId uuid.UUID, action string) (*entity.Message, error) {
	message, err := uow.MessageRepository().FindByID(ctx, messageId)
	if err != nil {
		return nil, apperror.Internal("failed to load message", err)
	}
	if message == nil {
		return nil, apperror.NotFound("Message not found")
	}
	if message.SenderId != userId {
		return nil, apperror.Authorization("You can only " + action + " your own messages")
	}
	return message, nil
}

// requireMembers rejects users that do not belong to the workspace.
func (s *chatService) requireMembers(ctx context.Context, uow unitofwork.UnitOfWork, workspaceId uuid.UUID, userIds []uuid.UUID) error {
	members, err := uow.WorkspaceMemberRepository().FindByWorkspace(ctx, workspaceId)
	if err != nil {
		return apperror.Internal("failed to load workspace members", err)
	}
	outsiders, _ := lo.Difference(userIds, memberUserIds(members))
	if len(outsiders) > 0 {
		return apperror.Validation("All participants must be members of this workspace")
	}
	return nil
}

func (s *chatService) checkEditWindow(message *entity.Message, action string) error {
	if s.now().Sub(message.CreatedAt) > s.editWindow {
		return apperror.Policy("Message is too old to be " + action + " (" + s.editWindow.String() + " limit)")
	}
	return nil
}

func (s *chatService) CreateChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	participants := lo.Uniq(append([]uuid.UUID{creatorId}, req.Participants...))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireMembers(ctx, uow, req.WorkspaceId, participants); err != nil {
		return nil, err
	}

	if req.IsDirectMessage {
		if len(participants) != 2 {
			return nil, apperror.Validation("A direct message needs exactly two participants")
		}
		chat, _, err := s.GetOrCreateDirectMessage(ctx, req.WorkspaceId, participants[0], participants[1])
		return chat, err
	}

	chat := entity.Chat{
		Id:           uuid.New(),
		WorkspaceId:  req.WorkspaceId,
		Name:         req.Name,
		Participants: participants,
		CreatedBy:    creatorId,
		CreatedAt:    s.now(),
	}
	err := uow.ChatRepository().Create(ctx, &chat)
	if errors.Is(err, contract.ErrDuplicate) {
		return nil, apperror.Validation("The " + entity.GeneralChatName + " chat already exists in this workspace")
	}
	if err != nil {
		return nil, apperror.Internal("failed to create chat", err)
	}

	res := toChatResponse(&chat)
	s.notifier.PublishChatCreated(ctx, res)
	return res, nil
}

func (s *chatService) GetUserChats(ctx context.Context, workspaceId, userId uuid.UUID) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindByParticipant(ctx, workspaceId, userId)
	if err != nil {
		return nil, apperror.Internal("failed to load chats", err)
	}
	return lo.Map(chats, func(c *entity.Chat, _ int) *dto.ChatResponse {
		return toChatResponse(c)
	}), nil
}

func (s *chatService) GetChatByID(ctx context.Context, chatId, userId uuid.UUID) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := s.participantChat(ctx, uow, chatId, userId)
	if err != nil {
		return nil, err
	}

	unread, err := uow.MessageRepository().CountUnread(ctx, chatId, userId)
	if err != nil {
		return nil, apperror.Internal("failed to count unread messages", err)
	}

	res := toChatResponse(chat)
	res.UnreadCount = &unread
	return res, nil
}

func (s *chatService) AddUserToChat(ctx context.Context, chatId, userId uuid.UUID) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().AddParticipant(ctx, chatId, userId)
	if err != nil {
		return nil, apperror.Internal("failed to add user to chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	return toChatResponse(chat), nil
}

func (s *chatService) newGeneralChat(workspaceId, creatorId uuid.UUID, members []uuid.UUID) *entity.Chat {
	name := entity.GeneralChatName
	return &entity.Chat{
		Id:           uuid.New(),
		WorkspaceId:  workspaceId,
		Name:         &name,
		Participants: lo.Uniq(append([]uuid.UUID{creatorId}, members...)),
		CreatedBy:    creatorId,
		CreatedAt:    s.now(),
	}
}

// EnsureGeneralChat returns the workspace's standing chat, creating it with members when missing.
// Concurrent first calls race on the general chat unique index; the loser reads back the winner.
func (s *chatService) EnsureGeneralChat(ctx context.Context, workspaceId, creatorId uuid.UUID, members []uuid.UUID) (*dto.ChatResponse, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.ChatRepository().FindByName(ctx, workspaceId, entity.GeneralChatName)
	if err != nil {
		return nil, false, apperror.Internal("failed to load general chat", err)
	}
	if existing != nil {
		return toChatResponse(existing), false, nil
	}

	chat := s.newGeneralChat(workspaceId, creatorId, members)
	err = uow.ChatRepository().Create(ctx, chat)
	if errors.Is(err, contract.ErrDuplicate) {
		winner, findErr := uow.ChatRepository().FindByName(ctx, workspaceId, entity.GeneralChatName)
		if findErr != nil || winner == nil {
			return nil, false, apperror.Internal("failed to load general chat", findErr)
		}
		return toChatResponse(winner), false, nil
	}
	if err != nil {
		return nil, false, apperror.Internal("failed to create general chat", err)
	}

	res := toChatResponse(chat)
	s.notifier.PublishChatCreated(ctx, res)
	return res, true, nil
}

// AddMemberToGeneralChat runs when an invitation is accepted.
func (s *chatService) AddMemberToGeneralChat(ctx context.Context, workspaceId, userId uuid.UUID) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	members, err := uow.WorkspaceMemberRepository().FindByWorkspace(ctx, workspaceId)
	if err != nil {
		return nil, apperror.Internal("failed to load workspace members", err)
	}

	general, created, err := s.joinGeneralChat(ctx, uow, workspaceId, userId, memberUserIds(members))
	if errors.Is(err, contract.ErrDuplicate) {
		// The winner's chat is committed; joining it now takes the add-participant branch.
		general, created, err = s.joinGeneralChat(ctx, s.uowFactory.NewUnitOfWork(ctx), workspaceId, userId, nil)
	}
	if err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, apperror.Internal("failed to create general chat", err)
		}
		return nil, err
	}

	res := toChatResponse(general)
	if created {
		s.notifier.PublishChatCreated(ctx, res)
	}
	return res, nil
}

// joinGeneralChat finds or creates the general chat and adds userId in one transaction.
// It returns contract.ErrDuplicate unwrapped when another request created the chat first.
func (s *chatService) joinGeneralChat(ctx context.Context, uow unitofwork.UnitOfWork, workspaceId, userId uuid.UUID, members []uuid.UUID) (*entity.Chat, bool, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, false, apperror.Internal("failed to start transaction", err)
	}
	defer uow.Rollback()

	chats := uow.ChatRepository()
	general, err := chats.FindByName(ctx, workspaceId, entity.GeneralChatName)
	if err != nil {
		return nil, false, apperror.Internal("failed to load general chat", err)
	}

	created := general == nil
	if created {
		general = s.newGeneralChat(workspaceId, userId, members)
		if err := chats.Create(ctx, general); err != nil {
			if errors.Is(err, contract.ErrDuplicate) {
				return nil, false, err
			}
			return nil, false, apperror.Internal("failed to create general chat", err)
		}
	} else {
		general, err = chats.AddParticipant(ctx, general.Id, userId)
		if err != nil {
			return nil, false, apperror.Internal("failed to add user to chat", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, false, apperror.Internal("failed to join general chat", err)
	}
	return general, created, nil
}

// GetOrCreateDirectMessage is idempotent per unordered pair. Two concurrent first calls race on the
// (workspace, direct key) unique index; the loser reads back the winner's chat. The create runs
// outside a transaction because Postgres aborts a transaction on a unique violation, and the
// read-back has to happen after it.
func (s *chatService) GetOrCreateDirectMessage(ctx context.Context, workspaceId, userA, userB uuid.UUID) (*dto.ChatResponse, bool, error) {
	if userA == userB {
		return nil, false, apperror.Validation("Cannot open a direct message with yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.ChatRepository().FindDirect(ctx, workspaceId, userA, userB)
	if err != nil {
		return nil, false, apperror.Internal("failed to load direct message", err)
	}
	if existing != nil {
		return toChatResponse(existing), false, nil
	}

	chat := entity.Chat{
		Id:              uuid.New(),
		WorkspaceId:     workspaceId,
		IsDirectMessage: true,
		Participants:    []uuid.UUID{userA, userB},
		CreatedBy:       userA,
		CreatedAt:       s.now(),
	}
	err = uow.ChatRepository().Create(ctx, &chat)
	if errors.Is(err, contract.ErrDuplicate) {
		winner, findErr := uow.ChatRepository().FindDirect(ctx, workspaceId, userA, userB)
		if findErr != nil || winner == nil {
			return nil, false, apperror.Internal("failed to load direct message", findErr)
		}
		return toChatResponse(winner), false, nil
	}
	if err != nil {
		return nil, false, apperror.Internal("failed to create direct message", err)
	}

	res := toChatResponse(&chat)
	s.notifier.PublishChatCreated(ctx, res)
	return res, true, nil
}

func (s *chatService) SendMessage(ctx context.Context, chatId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, *dto.ChatResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, nil, apperror.Validation("Message content is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := s.participantChat(ctx, uow, chatId, senderId)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := s.sealContent(req.Content)
	if err != nil {
		return nil, nil, err
	}

	message := entity.Message{
		Id:          uuid.New(),
		ChatId:      chatId,
		SenderId:    senderId,
		Content:     sealed,
		Attachments: lo.Compact(req.Attachments),
		ReadBy:      []uuid.UUID{senderId},
		CreatedAt:   s.now(),
	}
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, apperror.Internal("failed to start transaction", err)
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, nil, apperror.Internal("failed to send message", err)
	}
	if err := uow.ChatRepository().Touch(ctx, chatId, message.CreatedAt); err != nil {
		return nil, nil, apperror.Internal("failed to update chat", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, apperror.Internal("failed to send message", err)
	}

	touched := message.CreatedAt
	chat.UpdatedAt = &touched

	res := s.toMessageResponse(&message)
	chatRes := toChatResponse(chat)
	s.notifier.PublishMessageSent(ctx, chatRes, res)
	return res, chatRes, nil
}

// GetChatMessages marks the chat read for userId before loading, so the returned readBy sets include them.
func (s *chatService) GetChatMessages(ctx context.Context, chatId, userId uuid.UUID) ([]*dto.MessageResponse, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.participantChat(ctx, uow, chatId, userId); err != nil {
		return nil, 0, err
	}

	marked, err := uow.MessageRepository().MarkAsRead(ctx, chatId, userId)
	if err != nil {
		return nil, 0, apperror.Internal("failed to mark messages as read", err)
	}

	messages, err := uow.MessageRepository().FindByChat(ctx, chatId)
	if err != nil {
		return nil, 0, apperror.Internal("failed to load messages", err)
	}

	return lo.Map(messages, func(m *entity.Message, _ int) *dto.MessageResponse {
		return s.toMessageResponse(m)
	}), marked, nil
}

func (s *chatService) GetMessageByID(ctx context.Context, messageId, userId uuid.UUID) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	message, err := uow.MessageRepository().FindByID(ctx, messageId)
	if err != nil {
		return nil, apperror.Internal("failed to load message", err)
	}
	if message == nil {
		return nil, apperror.NotFound("Message not found")
	}
	if _, err := s.participantChat(ctx, uow, message.ChatId, userId); err != nil {
		if apperror.KindOf(err) == apperror.KindAuthorization {
			return nil, apperror.Authorization("You don't have access to this message")
		}
		return nil, err
	}
	return s.toMessageResponse(message), nil
}

func (s *chatService) UpdateMessage(ctx context.Context, messageId, userId uuid.UUID, content string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("Message content is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	message, err := s.ownedMessage(ctx, uow, messageId, userId, "edit")
	if err != nil {
		return nil, err
	}
	if message.IsDeleted {
		return nil, apperror.Policy("Deleted messages cannot be edited")
	}
	if err := s.checkEditWindow(message, "edited"); err != nil {
		return nil, err
	}

	sealed, err := s.sealContent(content)
	if err != nil {
		return nil, err
	}
	message.Content = sealed
	message.IsEdited = true
	if err := uow.MessageRepository().Update(ctx, message); err != nil {
		return nil, apperror.Internal("failed to update message", err)
	}

	return s.toMessageResponse(message), nil
}

func (s *chatService) DeleteMessage(ctx context.Context, messageId, userId uuid.UUID) (*dto.DeleteMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	message, err := s.ownedMessage(ctx, uow, messageId, userId, "delete")
	if err != nil {
		return nil, err
	}
	if err := s.checkEditWindow(message, "deleted"); err != nil {
		return nil, err
	}

	if err := uow.MessageRepository().Delete(ctx, messageId); err != nil {
		return nil, apperror.Internal("failed to delete message", err)
	}

	return &dto.DeleteMessageResponse{
		MessageId: messageId,
		ChatId:    message.ChatId,
		DeletedBy: userId,
	}, nil
}

// SoftDeleteMessage keeps the row and replaces its content by the tombstone; no age limit applies.
func (s *chatService) SoftDeleteMessage(ctx context.Context, messageId, userId uuid.UUID) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	message, err := s.ownedMessage(ctx, uow, messageId, userId, "delete")
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealContent(DeletedMessageTombstone)
	if err != nil {
		return nil, err
	}
	message.Content = sealed
	message.IsDeleted = true
	message.Attachments = []string{}
	if err := uow.MessageRepository().Update(ctx, message); err != nil {
		return nil, apperror.Internal("failed to delete message", err)
	}

	return s.toMessageResponse(message), nil
}

func (s *chatService) MarkMessagesAsRead(ctx context.Context, chatId, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.participantChat(ctx, uow, chatId, userId); err != nil {
		return 0, err
	}

	modified, err := uow.MessageRepository().MarkAsRead(ctx, chatId, userId)
	if err != nil {
		return 0, apperror.Internal("failed to mark messages as read", err)
	}
	return modified, nil
}

// GetWorkspaceChatOverview lists the other members with their direct chat summary plus the general chat.
// Only the newest message of each chat is decrypted.
func (s *chatService) GetWorkspaceChatOverview(ctx context.Context, workspaceId, userId uuid.UUID) (*dto.ChatOverviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	members, err := uow.WorkspaceMemberRepository().FindByWorkspace(ctx, workspaceId)
	if err != nil {
		return nil, apperror.Internal("failed to load workspace members", err)
	}

	userChats, err := uow.ChatRepository().FindByParticipant(ctx, workspaceId, userId)
	if err != nil {
		return nil, apperror.Internal("failed to load chats", err)
	}

	general, _, err := s.EnsureGeneralChat(ctx, workspaceId, userId, memberUserIds(members))
	if err != nil {
		return nil, err
	}

	chatIds := lo.Uniq(append(lo.Map(userChats, func(c *entity.Chat, _ int) uuid.UUID {
		return c.Id
	}), general.Id))

	summaries, err := uow.MessageRepository().Summaries(ctx, chatIds, userId)
	if err != nil {
		return nil, apperror.Internal("failed to summarize chats", err)
	}
	summaryByChat := lo.KeyBy(summaries, func(sum *entity.ChatSummary) uuid.UUID {
		return sum.ChatId
	})

	directChats := lo.Filter(userChats, func(c *entity.Chat, _ int) bool {
		return c.IsDirectMessage && len(c.Participants) == 2
	})

	now := s.now()
	result := make([]*dto.MemberChatSummary, 0, len(members))
	for _, member := range members {
		if member.UserId == nil || *member.UserId == userId {
			continue
		}

		item := &dto.MemberChatSummary{
			MemberId: member.Id,
			UserId:   *member.UserId,
			Email:    member.Email,
			Role:     member.Role,
			Online:   member.LastActive.After(now.Add(-onlineThreshold)),
		}
		if chat, ok := lo.Find(directChats, func(c *entity.Chat) bool {
			return c.HasParticipant(*member.UserId)
		}); ok {
			chatId := chat.Id
			item.ChatId = &chatId
			if sum, ok := summaryByChat[chat.Id]; ok {
				item.LastMessage = s.lastMessageSummary(sum)
				item.MessageCount = sum.MessageCount
				item.UnreadCount = sum.UnreadCount
			}
		}
		result = append(result, item)
	}

	generalSummary := &dto.GeneralChatSummary{
		Id:           general.Id,
		Name:         entity.GeneralChatName,
		Participants: len(general.Participants),
	}
	if sum, ok := summaryByChat[general.Id]; ok {
		generalSummary.LastMessage = s.lastMessageSummary(sum)
		generalSummary.MessageCount = sum.MessageCount
		generalSummary.UnreadCount = sum.UnreadCount
	}

	return &dto.ChatOverviewResponse{
		Members:     result,
		GeneralChat: generalSummary,
	}, nil
}

func (s *chatService) lastMessageSummary(sum *entity.ChatSummary) *dto.LastMessageSummary {
	if sum.LastMessage == nil {
		return nil
	}
	return &dto.LastMessageSummary{
		Id:        sum.LastMessage.Id,
		Content:   s.openContent(sum.LastMessage.Id, sum.LastMessage.Content),
		SenderId:  sum.LastMessage.SenderId,
		CreatedAt: sum.LastMessage.CreatedAt,
		Unread:    sum.UnreadCount > 0,
	}
}

func memberUserIds(members []*entity.WorkspaceMember) []uuid.UUID {
	return lo.FilterMap(members, func(m *entity.WorkspaceMember, _ int) (uuid.UUID, bool) {
		if m.UserId == nil {
			return uuid.Nil, false
		}
		return *m.UserId, true
	})
}
