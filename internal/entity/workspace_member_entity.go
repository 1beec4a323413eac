package entity

import (
	"time"

	"github.com/google/uuid"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type WorkspaceMember struct {
	Id              uuid.UUID
	WorkspaceId     uuid.UUID
	UserId          *uuid.UUID
	Email           string
	Role            string
	InviteAccepted  bool
	CurrentPosition *Position
	LastActive      time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
