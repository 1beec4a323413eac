package dto

import (
	"time"

	"github.com/google/uuid"
)

// Chat payloads use camelCase keys: the same shapes travel over the websocket protocol.

type CreateChatRequest struct {
	WorkspaceId     uuid.UUID   `json:"workspaceId" validate:"required"`
	Participants    []uuid.UUID `json:"participants" validate:"required,min=1"`
	Name            *string     `json:"name" validate:"omitempty,max=255"`
	IsDirectMessage bool        `json:"isDirectMessage"`
}

type DirectMessageRequest struct {
	WorkspaceId uuid.UUID `json:"workspaceId" validate:"required"`
	UserId      uuid.UUID `json:"userId" validate:"required"`
}

type AddParticipantRequest struct {
	UserId uuid.UUID `json:"userId" validate:"required"`
}

type SendMessageRequest struct {
	Content     string   `json:"content" validate:"required"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,required"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type ChatResponse struct {
	Id              uuid.UUID   `json:"id"`
	WorkspaceId     uuid.UUID   `json:"workspaceId"`
	Name            *string     `json:"name"`
	IsDirectMessage bool        `json:"isDirectMessage"`
	Participants    []uuid.UUID `json:"participants"`
	CreatedBy       uuid.UUID   `json:"createdBy"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       *time.Time  `json:"updatedAt"`
	// UnreadCount is set only when the chat is fetched for a single principal.
	UnreadCount *int64 `json:"unreadCount,omitempty"`
}

// MessageResponse always carries decrypted content.
type MessageResponse struct {
	Id          uuid.UUID   `json:"id"`
	ChatId      uuid.UUID   `json:"chatId"`
	SenderId    uuid.UUID   `json:"senderId"`
	Content     string      `json:"content"`
	Attachments []string    `json:"attachments"`
	ReadBy      []uuid.UUID `json:"readBy"`
	IsEdited    bool        `json:"isEdited"`
	IsDeleted   bool        `json:"isDeleted"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt"`
}

type DeleteMessageResponse struct {
	MessageId uuid.UUID `json:"messageId"`
	ChatId    uuid.UUID `json:"chatId"`
	DeletedBy uuid.UUID `json:"deletedBy"`
	Soft      bool      `json:"soft"`
}

type MarkAsReadResponse struct {
	ChatId   uuid.UUID `json:"chatId"`
	Modified int64     `json:"modified"`
}

type LastMessageSummary struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	SenderId  uuid.UUID `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
	Unread    bool      `json:"unread"`
}

type MemberChatSummary struct {
	MemberId     uuid.UUID           `json:"memberId"`
	UserId       uuid.UUID           `json:"userId"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	Online       bool                `json:"online"`
	ChatId       *uuid.UUID          `json:"chatId"`
	LastMessage  *LastMessageSummary `json:"lastMessage"`
	MessageCount int64               `json:"messageCount"`
	UnreadCount  int64               `json:"unreadCount"`
}

type GeneralChatSummary struct {
	Id           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Participants int                 `json:"participants"`
	LastMessage  *LastMessageSummary `json:"lastMessage"`
	MessageCount int64               `json:"messageCount"`
	UnreadCount  int64               `json:"unreadCount"`
}

type ChatOverviewResponse struct {
	Members     []*MemberChatSummary `json:"members"`
	GeneralChat *GeneralChatSummary  `json:"generalChat"`
}
