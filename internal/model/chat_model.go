package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Chat struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId     uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_chats_workspace_direct_key,priority:1"`
	Name            *string                     `gorm:"type:varchar(255)"`
	IsDirectMessage bool                        `gorm:"not null;default:false"`
	DirectKey       *string                     `gorm:"type:varchar(80);uniqueIndex:idx_chats_workspace_direct_key,priority:2"` // sorted participant pair, set only for direct messages
	Participants    datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedBy       uuid.UUID                   `gorm:"type:uuid;not null"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime"`
}

func (Chat) TableName() string {
	return "chats"
}

// Message.Content always holds an encryption envelope, never plaintext.
type Message struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId      uuid.UUID                   `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1"`
	SenderId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Content     string                      `gorm:"type:text;not null"`
	Attachments datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	ReadBy      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	IsEdited    bool                        `gorm:"not null;default:false"`
	IsDeleted   bool                        `gorm:"not null;default:false"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime;index:idx_messages_chat_created,priority:2"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}

// ChatMessageStats is the row shape of the per-chat aggregation query.
type ChatMessageStats struct {
	ChatId       uuid.UUID
	MessageCount int64
	UnreadCount  int64
}
