package dto

import "encoding/json"

const (
	TargetChat      = "chat"
	TargetWorkspace = "workspace"
	TargetUser      = "user"
)

// RealtimeEvent travels on the in-process bus from REST handlers to the websocket relay.
type RealtimeEvent struct {
	Event    string          `json:"event"`
	Target   string          `json:"target"`
	TargetId string          `json:"targetId"`
	Payload  json.RawMessage `json:"payload"`
}

type WorkspaceJoinedPayload struct {
	WorkspaceId string   `json:"workspaceId"`
	ActiveUsers []string `json:"activeUsers"`
}

type ActiveUsersPayload struct {
	WorkspaceId string   `json:"workspaceId"`
	Users       []string `json:"users"`
}

type ChatRoomPayload struct {
	ChatId string `json:"chatId"`
}

// ChatMemberPayload is shared by the join, leave, typing and voice notices.
type ChatMemberPayload struct {
	ChatId string `json:"chatId"`
	UserId string `json:"userId"`
}

type MessageSentPayload struct {
	TempId  string           `json:"tempId,omitempty"`
	Message *MessageResponse `json:"message"`
}

type ChatUpdatedPayload struct {
	ChatId      string              `json:"chatId"`
	WorkspaceId string              `json:"workspaceId"`
	LastMessage *LastMessageSummary `json:"lastMessage"`
}

type MessagesReadPayload struct {
	ChatId   string `json:"chatId"`
	UserId   string `json:"userId"`
	Modified int64  `json:"modified"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type UserPositionPayload struct {
	UserId      string   `json:"userId"`
	WorkspaceId string   `json:"workspaceId"`
	Position    Position `json:"position"`
}

type UserDisconnectedPayload struct {
	UserId      string `json:"userId"`
	WorkspaceId string `json:"workspaceId"`
}

type UserAddedPayload struct {
	ChatId string        `json:"chatId"`
	UserId string        `json:"userId"`
	Chat   *ChatResponse `json:"chat"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}
