package websocket

import (
	"context"
	"errors"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/apperror"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/service"

	"github.com/google/uuid"
)

// Router validates and executes inbound events and fans the results out.
// It is the only writer of the Registry.
//
// Handlers that check access and then persist do not hold the registry lock across the
// store call; a concurrent leave or disconnect in between is accepted and the broadcast
// simply reaches whoever is in the room once the write returns.
type Router struct {
	registry *Registry
	rooms    *Rooms
	decoder  *Decoder
	chats    service.IChatService
	access   service.IAccessService
	members  service.IWorkspaceMemberService
	limiter  service.IRateLimitService
	logger   logger.ILogger
}

func NewRouter(
	registry *Registry,
	emitter Emitter,
	chats service.IChatService,
	access service.IAccessService,
	members service.IWorkspaceMemberService,
	limiter service.IRateLimitService,
	log logger.ILogger,
) *Router {
	return &Router{
		registry: registry,
		rooms:    NewRooms(registry, emitter),
		decoder:  NewDecoder(),
		chats:    chats,
		access:   access,
		members:  members,
		limiter:  limiter,
		logger:   log,
	}
}

func (r *Router) Rooms() *Rooms {
	return r.rooms
}

func (r *Router) HandleConnect(connectionID, principal string) {
	if !r.registry.AddConnection(connectionID, principal) {
		r.logger.Warn("Router", "Connection id already registered", map[string]interface{}{"connection_id": connectionID})
		return
	}
	r.logger.Info("Router", "Connection opened", map[string]interface{}{
		"connection_id": connectionID,
		"user_id":       principal,
	})
}

func (r *Router) HandleFrame(ctx context.Context, connectionID string, data []byte) {
	presence, ok := r.registry.Get(connectionID)
	if !ok {
		return
	}
	userId, err := uuid.Parse(presence.Principal)
	if err != nil {
		r.logger.Error("Router", "Connection principal is not a valid id", map[string]interface{}{"connection_id": connectionID})
		return
	}

	name, event, err := r.decoder.ParseFrame(data)
	if errors.Is(err, errUnknownEvent) {
		r.logger.Warn("Router", "Dropping unrecognized frame", map[string]interface{}{
			"connection_id": connectionID,
			"event":         name,
			"error":         err.Error(),
		})
		return
	}

	if r.limiter != nil && !r.limiter.Allow(ctx, presence.Principal) {
		r.fail(connectionID, name, apperror.Policy("Too many events, slow down"))
		return
	}
	if err != nil {
		r.fail(connectionID, name, err)
		return
	}

	r.registry.Touch(connectionID)
	if err := r.dispatch(ctx, connectionID, userId, event); err != nil {
		r.fail(connectionID, name, err)
	}
}

func (r *Router) dispatch(ctx context.Context, connectionID string, userId uuid.UUID, event InboundEvent) error {
	switch e := event.(type) {
	case *JoinWorkspaceEvent:
		return r.joinWorkspace(ctx, connectionID, userId, e)
	case *ChatRoomEvent:
		chatId, err := parseID(e.ChatId, "chat id")
		if err != nil {
			return err
		}
		switch e.Name {
		case EventJoinChat:
			return r.joinChat(ctx, connectionID, userId, chatId)
		case EventLeaveChat:
			return r.leaveChat(connectionID, userId, chatId)
		case EventMarkRead:
			return r.markRead(ctx, connectionID, userId, chatId)
		case EventTypingStart:
			return r.typing(connectionID, userId, chatId, EventUserTyping)
		case EventTypingStop:
			return r.typing(connectionID, userId, chatId, EventUserStoppedTyping)
		case EventJoinVoiceChat:
			return r.joinVoice(connectionID, userId, chatId)
		case EventLeaveVoiceChat:
			return r.leaveVoice(connectionID, userId, chatId)
		}
	case *SendMessageEvent:
		return r.sendMessage(ctx, connectionID, userId, e)
	case *UpdateMessageEvent:
		return r.updateMessage(ctx, connectionID, userId, e)
	case *DeleteMessageEvent:
		return r.deleteMessage(ctx, connectionID, userId, e)
	case *UpdatePositionEvent:
		return r.updatePosition(ctx, connectionID, userId, e)
	}
	return apperror.Validation("Unsupported event")
}

// fail reports err to the sender only. The connection stays open.
func (r *Router) fail(connectionID, event string, err error) {
	kind := apperror.KindOf(err)
	details := map[string]interface{}{
		"connection_id": connectionID,
		"event":         event,
		"kind":          string(kind),
	}
	if kind == apperror.KindInternal {
		details["error"] = err.Error()
		r.logger.Error("Router", "Event handler failed", details)
	} else {
		r.logger.Debug("Router", "Event rejected", details)
	}

	r.rooms.ToConnection(connectionID, EventError, dto.ErrorPayload{
		Event:   event,
		Message: apperror.PublicMessage(err, "Failed to process "+event),
	})
}

// parseID canonicalizes ids so room keys match whatever casing the client sent.
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid " + what)
	}
	return id, nil
}

func (r *Router) joinWorkspace(ctx context.Context, connectionID string, userId uuid.UUID, e *JoinWorkspaceEvent) error {
	workspaceId, err := parseID(e.WorkspaceId, "workspace id")
	if err != nil {
		return err
	}

	member, err := r.access.IsWorkspaceMember(ctx, workspaceId, userId)
	if err != nil {
		return err
	}
	if !member {
		return apperror.Authorization("You are not a member of this workspace")
	}

	room := workspaceId.String()
	previous, ok := r.registry.SetWorkspace(connectionID, room)
	if !ok {
		return nil
	}
	if previous != "" {
		r.broadcastActiveUsers(previous)
	}

	r.rooms.ToConnection(connectionID, EventWorkspaceJoined, dto.WorkspaceJoinedPayload{
		WorkspaceId: room,
		ActiveUsers: r.registry.ActiveUsersInWorkspace(room),
	})
	r.broadcastActiveUsers(room)
	return nil
}

func (r *Router) broadcastActiveUsers(workspaceID string) {
	r.rooms.ToWorkspace(workspaceID, EventActiveUsers, dto.ActiveUsersPayload{
		WorkspaceId: workspaceID,
		Users:       r.registry.ActiveUsersInWorkspace(workspaceID),
	})
}

func (r *Router) joinChat(ctx context.Context, connectionID string, userId, chatId uuid.UUID) error {
	participant, err := r.access.IsChatParticipant(ctx, chatId, userId)
	if err != nil {
		return err
	}
	if !participant {
		return apperror.Authorization("You don't have access to this chat")
	}

	room := chatId.String()
	if !r.registry.JoinChat(connectionID, room) {
		return nil
	}
	r.rooms.ToConnection(connectionID, EventChatJoined, dto.ChatRoomPayload{ChatId: room})
	r.rooms.ToChat(room, EventUserJoinedChat, dto.ChatMemberPayload{ChatId: room, UserId: userId.String()}, connectionID)
	return nil
}

func (r *Router) leaveChat(connectionID string, userId, chatId uuid.UUID) error {
	room := chatId.String()
	if !r.registry.LeaveChat(connectionID, room) {
		return nil
	}
	r.rooms.ToConnection(connectionID, EventChatLeft, dto.ChatRoomPayload{ChatId: room})
	r.rooms.ToChat(room, EventUserLeftChat, dto.ChatMemberPayload{ChatId: room, UserId: userId.String()})
	return nil
}

func (r *Router) markRead(ctx context.Context, connectionID string, userId, chatId uuid.UUID) error {
	modified, err := r.chats.MarkMessagesAsRead(ctx, chatId, userId)
	if err != nil {
		return err
	}

	payload := dto.MessagesReadPayload{ChatId: chatId.String(), UserId: userId.String(), Modified: modified}
	r.rooms.ToConnection(connectionID, EventMessagesRead, payload)
	if modified > 0 {
		r.rooms.ToChat(chatId.String(), EventMessagesRead, payload, connectionID)
	}
	return nil
}

func (r *Router) typing(connectionID string, userId, chatId uuid.UUID, outbound string) error {
	room := chatId.String()
	if !r.registry.InChat(connectionID, room) {
		return apperror.Authorization("Join the chat before sending typing updates")
	}
	r.rooms.ToChat(room, outbound, dto.ChatMemberPayload{ChatId: room, UserId: userId.String()}, connectionID)
	return nil
}

func (r *Router) joinVoice(connectionID string, userId, chatId uuid.UUID) error {
	room := chatId.String()
	if !r.registry.JoinVoice(connectionID, room) {
		return nil
	}
	r.rooms.ToVoice(room, EventUserJoinedVoice, dto.ChatMemberPayload{ChatId: room, UserId: userId.String()})
	return nil
}

func (r *Router) leaveVoice(connectionID string, userId, chatId uuid.UUID) error {
	room := chatId.String()
	if !r.registry.LeaveVoice(connectionID, room) {
		return nil
	}
	r.rooms.ToVoice(room, EventUserLeftVoice, dto.ChatMemberPayload{ChatId: room, UserId: userId.String()})
	return nil
}

func (r *Router) sendMessage(ctx context.Context, connectionID string, userId uuid.UUID, e *SendMessageEvent) error {
	chatId, err := parseID(e.ChatId, "chat id")
	if err != nil {
		return err
	}

	message, chat, err := r.chats.SendMessage(ctx, chatId, userId, &dto.SendMessageRequest{
		Content:     e.Content,
		Attachments: e.Attachments,
	})
	if err != nil {
		return err
	}

	r.rooms.ToChat(chatId.String(), EventNewMessage, message)
	r.rooms.ToConnection(connectionID, EventMessageSent, dto.MessageSentPayload{TempId: e.TempId, Message: message})
	r.notifyChatUpdated(chat, message)
	return nil
}

// notifyChatUpdated tells each participant's workspace connections about the new last message.
// Non-participants in the workspace never see it.
func (r *Router) notifyChatUpdated(chat *dto.ChatResponse, message *dto.MessageResponse) {
	workspaceId := chat.WorkspaceId.String()
	for _, participant := range chat.Participants {
		r.rooms.ToWorkspaceUsers(workspaceId, []string{participant.String()}, EventChatUpdated, dto.ChatUpdatedPayload{
			ChatId:      chat.Id.String(),
			WorkspaceId: workspaceId,
			LastMessage: &dto.LastMessageSummary{
				Id:        message.Id,
				Content:   message.Content,
				SenderId:  message.SenderId,
				CreatedAt: message.CreatedAt,
				Unread:    participant != message.SenderId,
			},
		})
	}
}

func (r *Router) updateMessage(ctx context.Context, connectionID string, userId uuid.UUID, e *UpdateMessageEvent) error {
	messageId, err := parseID(e.MessageId, "message id")
	if err != nil {
		return err
	}

	message, err := r.chats.UpdateMessage(ctx, messageId, userId, e.Content)
	if err != nil {
		return err
	}

	r.rooms.ToChat(message.ChatId.String(), EventMessageUpdated, message)
	r.rooms.ToConnection(connectionID, EventMessageUpdatedSuccess, message)
	return nil
}

func (r *Router) deleteMessage(ctx context.Context, connectionID string, userId uuid.UUID, e *DeleteMessageEvent) error {
	messageId, err := parseID(e.MessageId, "message id")
	if err != nil {
		return err
	}

	var notice *dto.DeleteMessageResponse
	if e.Soft {
		message, err := r.chats.SoftDeleteMessage(ctx, messageId, userId)
		if err != nil {
			return err
		}
		notice = &dto.DeleteMessageResponse{
			MessageId: message.Id,
			ChatId:    message.ChatId,
			DeletedBy: userId,
			Soft:      true,
		}
	} else {
		notice, err = r.chats.DeleteMessage(ctx, messageId, userId)
		if err != nil {
			return err
		}
	}

	r.rooms.ToChat(notice.ChatId.String(), EventMessageDeleted, notice)
	r.rooms.ToConnection(connectionID, EventMessageDeletedSuccess, notice)
	return nil
}

func (r *Router) updatePosition(ctx context.Context, connectionID string, userId uuid.UUID, e *UpdatePositionEvent) error {
	workspaceId, err := parseID(e.WorkspaceId, "workspace id")
	if err != nil {
		return err
	}

	member, err := r.access.IsWorkspaceMember(ctx, workspaceId, userId)
	if err != nil {
		return err
	}
	if !member {
		return apperror.Authorization("You are not a member of this workspace")
	}

	position := entity.Position{X: *e.Position.X, Y: *e.Position.Y}
	if err := r.members.UpdatePosition(ctx, workspaceId, userId, position); err != nil {
		return err
	}

	r.rooms.ToWorkspace(workspaceId.String(), EventUserPosition, dto.UserPositionPayload{
		UserId:      userId.String(),
		WorkspaceId: workspaceId.String(),
		Position:    dto.Position{X: position.X, Y: position.Y},
	}, connectionID)
	return nil
}

// HandleDisconnect removes the connection and tells every room it was in.
func (r *Router) HandleDisconnect(ctx context.Context, connectionID string) {
	presence, ok := r.registry.RemoveConnection(connectionID)
	if !ok {
		return
	}

	for _, chatId := range presence.Chats {
		r.rooms.ToChat(chatId, EventUserLeftChat, dto.ChatMemberPayload{ChatId: chatId, UserId: presence.Principal})
	}
	for _, chatId := range presence.VoiceChats {
		r.rooms.ToVoice(chatId, EventUserLeftVoice, dto.ChatMemberPayload{ChatId: chatId, UserId: presence.Principal})
	}
	if presence.WorkspaceID != "" {
		r.rooms.ToWorkspace(presence.WorkspaceID, EventUserDisconnected, dto.UserDisconnectedPayload{
			UserId:      presence.Principal,
			WorkspaceId: presence.WorkspaceID,
		})
		r.broadcastActiveUsers(presence.WorkspaceID)
	}

	r.logger.Info("Router", "Connection closed", map[string]interface{}{
		"connection_id": connectionID,
		"user_id":       presence.Principal,
		"chats":         len(presence.Chats),
		"still_online":  len(r.registry.ConnectionsOf(presence.Principal)) > 0,
	})
}
