package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"collab-workspace-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// Inbound events.
const (
	EventJoinWorkspace  = "join-workspace"
	EventJoinChat       = "join-chat"
	EventLeaveChat      = "leave-chat"
	EventSendMessage    = "send-message"
	EventUpdateMessage  = "update-message"
	EventDeleteMessage  = "delete-message"
	EventMarkRead       = "mark-read"
	EventTypingStart    = "typing-start"
	EventTypingStop     = "typing-stop"
	EventUpdatePosition = "update-position"
	EventJoinVoiceChat  = "join-voice-chat"
	EventLeaveVoiceChat = "leave-voice-chat"
)

// Outbound events.
const (
	EventWorkspaceJoined       = "workspace-joined"
	EventChatJoined            = "chat-joined"
	EventChatLeft              = "chat-left"
	EventActiveUsers           = "active-users"
	EventNewMessage            = "new-message"
	EventMessageSent           = "message-sent"
	EventMessageUpdated        = "message-updated"
	EventMessageUpdatedSuccess = "message-updated-success"
	EventMessageDeleted        = "message-deleted"
	EventMessageDeletedSuccess = "message-deleted-success"
	EventMessagesRead          = "messages-read"
	EventUserPosition          = "user-position"
	EventUserTyping            = "user-typing"
	EventUserStoppedTyping     = "user-stopped-typing"
	EventUserJoinedChat        = "user-joined-chat"
	EventUserLeftChat          = "user-left-chat"
	EventUserJoinedVoice       = "user-joined-voice"
	EventUserLeftVoice         = "user-left-voice"
	EventUserDisconnected      = "user-disconnected"
	EventChatUpdated           = "chat-updated"
	EventNewChat               = "new-chat"
	EventUserAdded             = "user-added"
	EventError                 = "error"
)

var errUnknownEvent = errors.New("unknown event")

// Frame is the envelope of every websocket text message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// InboundEvent is implemented by every payload the router accepts.
type InboundEvent interface {
	EventName() string
}

type JoinWorkspaceEvent struct {
	WorkspaceId string `json:"workspaceId" validate:"required,uuid"`
}

type ChatRoomEvent struct {
	Name   string `json:"-"`
	ChatId string `json:"chatId" validate:"required,uuid"`
}

type SendMessageEvent struct {
	ChatId      string   `json:"chatId" validate:"required,uuid"`
	Content     string   `json:"content" validate:"required"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,required"`
	TempId      string   `json:"tempId,omitempty"`
}

type UpdateMessageEvent struct {
	MessageId string `json:"messageId" validate:"required,uuid"`
	Content   string `json:"content" validate:"required"`
}

type DeleteMessageEvent struct {
	MessageId string `json:"messageId" validate:"required,uuid"`
	Soft      bool   `json:"soft"`
}

type PositionPayload struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type UpdatePositionEvent struct {
	WorkspaceId string           `json:"workspaceId" validate:"required,uuid"`
	Position    *PositionPayload `json:"position" validate:"required"`
}

func (JoinWorkspaceEvent) EventName() string  { return EventJoinWorkspace }
func (e ChatRoomEvent) EventName() string     { return e.Name }
func (SendMessageEvent) EventName() string    { return EventSendMessage }
func (UpdateMessageEvent) EventName() string  { return EventUpdateMessage }
func (DeleteMessageEvent) EventName() string  { return EventDeleteMessage }
func (UpdatePositionEvent) EventName() string { return EventUpdatePosition }

// Events whose payload may be a bare id string instead of an object.
var bareIdField = map[string]string{
	EventJoinWorkspace:  "workspaceId",
	EventJoinChat:       "chatId",
	EventLeaveChat:      "chatId",
	EventMarkRead:       "chatId",
	EventJoinVoiceChat:  "chatId",
	EventLeaveVoiceChat: "chatId",
}

func newInbound(event string) (InboundEvent, bool) {
	switch event {
	case EventJoinWorkspace:
		return &JoinWorkspaceEvent{}, true
	case EventJoinChat, EventLeaveChat, EventMarkRead, EventTypingStart, EventTypingStop, EventJoinVoiceChat, EventLeaveVoiceChat:
		return &ChatRoomEvent{Name: event}, true
	case EventSendMessage:
		return &SendMessageEvent{}, true
	case EventUpdateMessage:
		return &UpdateMessageEvent{}, true
	case EventDeleteMessage:
		return &DeleteMessageEvent{}, true
	case EventUpdatePosition:
		return &UpdatePositionEvent{}, true
	}
	return nil, false
}

// Decoder turns a raw frame into a typed, validated inbound event.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New()}
}

// ParseFrame returns the frame's event name with the decoded payload.
// Frames that are not JSON or name no known event yield errUnknownEvent;
// a known event with a bad payload yields an apperror Validation error.
func (d *Decoder) ParseFrame(data []byte) (string, InboundEvent, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUnknownEvent, err)
	}

	event, ok := newInbound(frame.Event)
	if !ok {
		return frame.Event, nil, fmt.Errorf("%w: %q", errUnknownEvent, frame.Event)
	}

	payload := frame.Data
	if field, bare := bareIdField[frame.Event]; bare {
		var id string
		if json.Unmarshal(payload, &id) == nil {
			payload, _ = json.Marshal(map[string]string{field: id})
		}
	}
	if len(payload) == 0 || string(payload) == "null" {
		return frame.Event, nil, apperror.Validation(fmt.Sprintf("Payload required for %s", frame.Event))
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return frame.Event, nil, apperror.Validation(fmt.Sprintf("Invalid payload for %s", frame.Event))
	}
	if err := d.validate.Struct(event); err != nil {
		return frame.Event, nil, apperror.Validation(describeValidation(frame.Event, err))
	}
	return frame.Event, event, nil
}

func describeValidation(event string, err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Sprintf("Invalid payload for %s", event)
	}
	fields := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", lowerFirst(fe.Field()), fe.Tag()))
	}
	return fmt.Sprintf("Invalid payload for %s: %s", event, strings.Join(fields, ", "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
