package implementation

import (
	"context"
	"errors"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/mapper"
	"collab-workspace-be/internal/model"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	m := r.mapper.ChatToModel(chat)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*chat = *r.mapper.ChatToEntity(m)
	return nil
}

func (r *ChatRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Chat, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *ChatRepositoryImpl) FindByParticipant(ctx context.Context, workspaceId, userId uuid.UUID) ([]*entity.Chat, error) {
	return r.findAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.HasParticipant{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
}

func (r *ChatRepositoryImpl) FindDirect(ctx context.Context, workspaceId, userA, userB uuid.UUID) (*entity.Chat, error) {
	return r.findOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByDirectKey{Key: entity.DirectKey(userA, userB)},
	)
}

func (r *ChatRepositoryImpl) FindByName(ctx context.Context, workspaceId uuid.UUID, name string) (*entity.Chat, error) {
	return r.findOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByChatName{Name: name},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *ChatRepositoryImpl) AddParticipant(ctx context.Context, chatId, userId uuid.UUID) (*entity.Chat, error) {
	member := `["` + userId.String() + `"]`
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", chatId).
		Where("NOT (participants @> ?::jsonb)", member).
		Update("participants", gorm.Expr("participants || ?::jsonb", member)).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, chatId)
}

func (r *ChatRepositoryImpl) Touch(ctx context.Context, chatId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", chatId).
		UpdateColumn("updated_at", at).Error
}

func (r *ChatRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	var m model.Chat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	var models []*model.Chat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Chat, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatToEntity(m)
	}
	return entities, nil
}
