package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HasParticipant matches chats whose participants array contains UserID.
type HasParticipant struct {
	UserID uuid.UUID
}

func (s HasParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participants @> ?::jsonb", jsonArrayOf(s.UserID))
}

type ByDirectKey struct {
	Key string
}

func (s ByDirectKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_direct_message = ? AND direct_key = ?", true, s.Key)
}

// ByChatName matches non-direct chats by display name.
type ByChatName struct {
	Name string
}

func (s ByChatName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_direct_message = ? AND name = ?", false, s.Name)
}

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByChatIDs struct {
	ChatIDs []uuid.UUID
}

func (s ByChatIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id IN ?", s.ChatIDs)
}

// UnreadBy matches messages whose readBy array does not contain UserID.
type UnreadBy struct {
	UserID uuid.UUID
}

func (s UnreadBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("NOT (read_by @> ?::jsonb)", jsonArrayOf(s.UserID))
}

type ByMemberUser struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
}

func (s ByMemberUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ? AND user_id = ?", s.WorkspaceID, s.UserID)
}
