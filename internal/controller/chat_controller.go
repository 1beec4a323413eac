package controller

import (
	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/pkg/apperror"
	"collab-workspace-be/internal/pkg/serverutils"
	"collab-workspace-be/internal/service"
	internalWS "collab-workspace-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	GetUserChats(ctx *fiber.Ctx) error
	GetOverview(ctx *fiber.Ctx) error
	JoinGeneralChat(ctx *fiber.Ctx) error
	DirectMessage(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	AddParticipant(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	MarkAsRead(ctx *fiber.Ctx) error
	ShowMessage(ctx *fiber.Ctx) error
	UpdateMessage(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
}

// chatController mirrors successful mutations to realtime clients through the publisher.
type chatController struct {
	service   service.IChatService
	access    service.IAccessService
	publisher service.IPublisherService
}

func NewChatController(service service.IChatService, access service.IAccessService, publisher service.IPublisherService) IChatController {
	return &chatController{
		service:   service,
		access:    access,
		publisher: publisher,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(auth)
	h.Post("", c.Create)
	h.Post("direct", c.DirectMessage)
	h.Get("workspace/:workspaceId", c.GetUserChats)
	h.Get("workspace/:workspaceId/overview", c.GetOverview)
	h.Post("workspace/:workspaceId/general", c.JoinGeneralChat)
	h.Get("messages/:messageId", c.ShowMessage)
	h.Put("messages/:messageId", c.UpdateMessage)
	h.Delete("messages/:messageId", c.DeleteMessage)
	h.Get(":chatId", c.Show)
	h.Post(":chatId/participants", c.AddParticipant)
	h.Get(":chatId/messages", c.GetMessages)
	h.Post(":chatId/messages", c.SendMessage)
	h.Put(":chatId/read", c.MarkAsRead)
}

func paramID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid " + name)
	}
	return id, nil
}

func (c *chatController) requireMember(ctx *fiber.Ctx, workspaceId, userId uuid.UUID) error {
	member, err := c.access.IsWorkspaceMember(ctx.UserContext(), workspaceId, userId)
	if err != nil {
		return err
	}
	if !member {
		return apperror.Authorization("You are not a member of this workspace")
	}
	return nil
}

func (c *chatController) announceChat(ctx *fiber.Ctx, chat *dto.ChatResponse) {
	for _, participant := range chat.Participants {
		c.publisher.ToUser(ctx.UserContext(), participant.String(), internalWS.EventNewChat, chat)
	}
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := c.requireMember(ctx, req.WorkspaceId, userId); err != nil {
		return err
	}

	res, err := c.service.CreateChat(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	c.announceChat(ctx, res)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat", res))
}

func (c *chatController) DirectMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.DirectMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := c.requireMember(ctx, req.WorkspaceId, userId); err != nil {
		return err
	}
	other, err := c.access.IsWorkspaceMember(ctx.UserContext(), req.WorkspaceId, req.UserId)
	if err != nil {
		return err
	}
	if !other {
		return apperror.NotFound("User is not a member of this workspace")
	}

	res, created, err := c.service.GetOrCreateDirectMessage(ctx.UserContext(), req.WorkspaceId, userId, req.UserId)
	if err != nil {
		return err
	}

	if created {
		c.announceChat(ctx, res)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get direct message", res))
}

func (c *chatController) GetUserChats(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	workspaceId, err := paramID(ctx, "workspaceId")
	if err != nil {
		return err
	}
	if err := c.requireMember(ctx, workspaceId, userId); err != nil {
		return err
	}

	res, err := c.service.GetUserChats(ctx.UserContext(), workspaceId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chats", res))
}

func (c *chatController) GetOverview(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	workspaceId, err := paramID(ctx, "workspaceId")
	if err != nil {
		return err
	}
	if err := c.requireMember(ctx, workspaceId, userId); err != nil {
		return err
	}

	res, err := c.service.GetWorkspaceChatOverview(ctx.UserContext(), workspaceId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat overview", res))
}

// JoinGeneralChat is called by the client once an invitation has been accepted.
func (c *chatController) JoinGeneralChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	workspaceId, err := paramID(ctx, "workspaceId")
	if err != nil {
		return err
	}
	if err := c.requireMember(ctx, workspaceId, userId); err != nil {
		return err
	}

	res, err := c.service.AddMemberToGeneralChat(ctx.UserContext(), workspaceId, userId)
	if err != nil {
		return err
	}

	c.publisher.ToChat(ctx.UserContext(), res.Id.String(), internalWS.EventUserAdded, dto.UserAddedPayload{
		ChatId: res.Id.String(),
		UserId: userId.String(),
		Chat:   res,
	})
	return ctx.JSON(serverutils.SuccessResponse("Success join general chat", res))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := paramID(ctx, "chatId")
	if err != nil {
		return err
	}

	res, err := c.service.GetChatByID(ctx.UserContext(), chatId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat", res))
}

func (c *chatController) AddParticipant(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := paramID(ctx, "chatId")
	if err != nil {
		return err
	}

	var req dto.AddParticipantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	chat, err := c.service.GetChatByID(ctx.UserContext(), chatId, userId)
	if err != nil {
		return err
	}
	if chat.IsDirectMessage {
		return apperror.Policy("Direct messages cannot have more participants")
	}
	if err := c.requireMember(ctx, chat.WorkspaceId, req.UserId); err != nil {
		return apperror.NotFound("User is not a member of this workspace")
	}

	res, err := c.service.AddUserToChat(ctx.UserContext(), chatId, req.UserId)
	if err != nil {
		return err
	}

	added := dto.UserAddedPayload{ChatId: chatId.String(), UserId: req.UserId.String(), Chat: res}
	c.publisher.ToChat(ctx.UserContext(), chatId.String(), internalWS.EventUserAdded, added)
	c.publisher.ToUser(ctx.UserContext(), req.UserId.String(), internalWS.EventNewChat, res)
	return ctx.JSON(serverutils.SuccessResponse("Success add participant", res))
}

// GetMessages marks the chat read for the caller as a side effect.
func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := paramID(ctx, "chatId")
	if err != nil {
		return err
	}

	res, marked, err := c.service.GetChatMessages(ctx.UserContext(), chatId, userId)
	if err != nil {
		return err
	}

	if marked > 0 {
		c.publisher.ToChat(ctx.UserContext(), chatId.String(), internalWS.EventMessagesRead, dto.MessagesReadPayload{
			ChatId:   chatId.String(),
			UserId:   userId.String(),
			Modified: marked,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := paramID(ctx, "chatId")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, chat, err := c.service.SendMessage(ctx.UserContext(), chatId, userId, &req)
	if err != nil {
		return err
	}

	c.publisher.ToChat(ctx.UserContext(), chatId.String(), internalWS.EventNewMessage, res)
	for _, participant := range chat.Participants {
		c.publisher.ToUser(ctx.UserContext(), participant.String(), internalWS.EventChatUpdated, dto.ChatUpdatedPayload{
			ChatId:      chatId.String(),
			WorkspaceId: chat.WorkspaceId.String(),
			LastMessage: &dto.LastMessageSummary{
				Id:        res.Id,
				Content:   res.Content,
				SenderId:  res.SenderId,
				CreatedAt: res.CreatedAt,
				Unread:    participant != userId,
			},
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) MarkAsRead(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := paramID(ctx, "chatId")
	if err != nil {
		return err
	}

	modified, err := c.service.MarkMessagesAsRead(ctx.UserContext(), chatId, userId)
	if err != nil {
		return err
	}

	res := dto.MarkAsReadResponse{ChatId: chatId, Modified: modified}
	if modified > 0 {
		c.publisher.ToChat(ctx.UserContext(), chatId.String(), internalWS.EventMessagesRead, dto.MessagesReadPayload{
			ChatId:   chatId.String(),
			UserId:   userId.String(),
			Modified: modified,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark messages as read", res))
}

func (c *chatController) ShowMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := paramID(ctx, "messageId")
	if err != nil {
		return err
	}

	res, err := c.service.GetMessageByID(ctx.UserContext(), messageId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get message", res))
}

func (c *chatController) UpdateMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := paramID(ctx, "messageId")
	if err != nil {
		return err
	}

	var req dto.UpdateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateMessage(ctx.UserContext(), messageId, userId, req.Content)
	if err != nil {
		return err
	}

	c.publisher.ToChat(ctx.UserContext(), res.ChatId.String(), internalWS.EventMessageUpdated, res)
	return ctx.JSON(serverutils.SuccessResponse("Success update message", res))
}

// DeleteMessage hard-deletes unless ?soft=true.
func (c *chatController) DeleteMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := paramID(ctx, "messageId")
	if err != nil {
		return err
	}

	var notice *dto.DeleteMessageResponse
	if ctx.QueryBool("soft", false) {
		message, err := c.service.SoftDeleteMessage(ctx.UserContext(), messageId, userId)
		if err != nil {
			return err
		}
		notice = &dto.DeleteMessageResponse{MessageId: message.Id, ChatId: message.ChatId, DeletedBy: userId, Soft: true}
	} else {
		notice, err = c.service.DeleteMessage(ctx.UserContext(), messageId, userId)
		if err != nil {
			return err
		}
	}

	c.publisher.ToChat(ctx.UserContext(), notice.ChatId.String(), internalWS.EventMessageDeleted, notice)
	return ctx.JSON(serverutils.SuccessResponse("Success delete message", notice))
}
