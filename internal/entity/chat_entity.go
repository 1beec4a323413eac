package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const GeneralChatName = "General"

type Chat struct {
	Id              uuid.UUID
	WorkspaceId     uuid.UUID
	Name            *string
	IsDirectMessage bool
	Participants    []uuid.UUID
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

func (c *Chat) HasParticipant(userId uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userId {
			return true
		}
	}
	return false
}

// DirectKey identifies the unordered pair of a direct-message chat.
func DirectKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// Message is a persisted chat message. Content is ciphertext while inside the repository
// layer and plaintext once it has passed through the chat service.
type Message struct {
	Id          uuid.UUID
	ChatId      uuid.UUID
	SenderId    uuid.UUID
	Content     string
	Attachments []string
	ReadBy      []uuid.UUID
	IsEdited    bool
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (m *Message) IsReadBy(userId uuid.UUID) bool {
	for _, r := range m.ReadBy {
		if r == userId {
			return true
		}
	}
	return false
}

// ChatSummary is the aggregation result for one chat: its newest message and counters for one reader.
type ChatSummary struct {
	ChatId       uuid.UUID
	LastMessage  *Message
	MessageCount int64
	UnreadCount  int64
}
