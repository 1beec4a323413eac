package events

import "time"

const (
	ChatMessageSent = "CHAT_MESSAGE_SENT"
	ChatCreated     = "CHAT_CREATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatMessageSent carries routing data only; message content never leaves the store.
func NewChatMessageSent(workspaceId, chatId, messageId, senderId string, recipients []string, at time.Time) Event {
	return BaseEvent{
		Type: ChatMessageSent,
		Data: map[string]interface{}{
			"workspace_id": workspaceId,
			"chat_id":      chatId,
			"message_id":   messageId,
			"sender_id":    senderId,
			"recipients":   recipients,
		},
		OccurredAt: at,
	}
}

func NewChatCreated(workspaceId, chatId, createdBy string, participants []string, isDirect bool, at time.Time) Event {
	return BaseEvent{
		Type: ChatCreated,
		Data: map[string]interface{}{
			"workspace_id":      workspaceId,
			"chat_id":           chatId,
			"created_by":        createdBy,
			"participants":      participants,
			"is_direct_message": isDirect,
		},
		OccurredAt: at,
	}
}
