package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkspaceMember struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_members_workspace_user,priority:1"`
	UserId         *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_workspace_members_workspace_user,priority:2"`
	Email          string     `gorm:"type:varchar(255);not null"`
	Role           string     `gorm:"type:varchar(20);not null;default:'member'"`
	InviteAccepted bool       `gorm:"not null;default:false"`
	PositionX      *float64
	PositionY      *float64
	LastActive     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (WorkspaceMember) TableName() string {
	return "workspace_members"
}
