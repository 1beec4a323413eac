package mapper

import (
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	return &entity.Chat{
		Id:              c.Id,
		WorkspaceId:     c.WorkspaceId,
		Name:            c.Name,
		IsDirectMessage: c.IsDirectMessage,
		Participants:    parseIds(c.Participants),
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       optionalTime(c.UpdatedAt),
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var directKey *string
	if c.IsDirectMessage && len(c.Participants) == 2 {
		key := entity.DirectKey(c.Participants[0], c.Participants[1])
		directKey = &key
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chat{
		Id:              c.Id,
		WorkspaceId:     c.WorkspaceId,
		Name:            c.Name,
		IsDirectMessage: c.IsDirectMessage,
		DirectKey:       directKey,
		Participants:    formatIds(c.Participants),
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	attachments := make([]string, len(msg.Attachments))
	copy(attachments, msg.Attachments)

	return &entity.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		SenderId:    msg.SenderId,
		Content:     msg.Content,
		Attachments: attachments,
		ReadBy:      parseIds(msg.ReadBy),
		IsEdited:    msg.IsEdited,
		IsDeleted:   msg.IsDeleted,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   optionalTime(msg.UpdatedAt),
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	attachments := datatypes.JSONSlice[string]{}
	attachments = append(attachments, msg.Attachments...)

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		SenderId:    msg.SenderId,
		Content:     msg.Content,
		Attachments: attachments,
		ReadBy:      formatIds(msg.ReadBy),
		IsEdited:    msg.IsEdited,
		IsDeleted:   msg.IsDeleted,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

// Workspace Member Mappers

func (m *ChatMapper) WorkspaceMemberToEntity(w *model.WorkspaceMember) *entity.WorkspaceMember {
	if w == nil {
		return nil
	}

	var position *entity.Position
	if w.PositionX != nil && w.PositionY != nil {
		position = &entity.Position{X: *w.PositionX, Y: *w.PositionY}
	}

	return &entity.WorkspaceMember{
		Id:              w.Id,
		WorkspaceId:     w.WorkspaceId,
		UserId:          w.UserId,
		Email:           w.Email,
		Role:            w.Role,
		InviteAccepted:  w.InviteAccepted,
		CurrentPosition: position,
		LastActive:      w.LastActive,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       optionalTime(w.UpdatedAt),
	}
}

func (m *ChatMapper) WorkspaceMemberToModel(w *entity.WorkspaceMember) *model.WorkspaceMember {
	if w == nil {
		return nil
	}

	result := &model.WorkspaceMember{
		Id:             w.Id,
		WorkspaceId:    w.WorkspaceId,
		UserId:         w.UserId,
		Email:          w.Email,
		Role:           w.Role,
		InviteAccepted: w.InviteAccepted,
		LastActive:     w.LastActive,
		CreatedAt:      w.CreatedAt,
	}
	if w.CurrentPosition != nil {
		x, y := w.CurrentPosition.X, w.CurrentPosition.Y
		result.PositionX = &x
		result.PositionY = &y
	}
	if w.UpdatedAt != nil {
		result.UpdatedAt = *w.UpdatedAt
	}
	return result
}

// parseIds skips values that are not valid UUIDs; the columns are written only through formatIds.
func parseIds(values []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formatIds(ids []uuid.UUID) datatypes.JSONSlice[string] {
	values := make(datatypes.JSONSlice[string], len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return values
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
