package implementation

import (
	"context"
	"errors"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/mapper"
	"collab-workspace-be/internal/model"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/scope"
	"collab-workspace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) Update(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Message{}, "id = ?", id).Error
}

func (r *MessageRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var m model.Message
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindByChat(ctx context.Context, chatId uuid.UUID) ([]*entity.Message, error) {
	var models []*model.Message
	query := applySpecifications(r.db.WithContext(ctx), specification.ByChatID{ChatID: chatId})
	if err := query.Scopes(scope.OrderByCreatedAsc).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Message, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

// MarkAsRead appends to read_by only where the reader is absent, so the array never holds duplicates.
func (r *MessageRepositoryImpl) MarkAsRead(ctx context.Context, chatId, userId uuid.UUID) (int64, error) {
	reader := `["` + userId.String() + `"]`
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}),
		specification.ByChatID{ChatID: chatId},
		specification.UnreadBy{UserID: userId},
	)
	result := query.UpdateColumn("read_by", gorm.Expr("read_by || ?::jsonb", reader))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *MessageRepositoryImpl) CountUnread(ctx context.Context, chatId, userId uuid.UUID) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}),
		specification.ByChatID{ChatID: chatId},
		specification.UnreadBy{UserID: userId},
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) Summaries(ctx context.Context, chatIds []uuid.UUID, userId uuid.UUID) ([]*entity.ChatSummary, error) {
	if len(chatIds) == 0 {
		return []*entity.ChatSummary{}, nil
	}

	var stats []model.ChatMessageStats
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select(`chat_id,
			COUNT(*) AS message_count,
			COUNT(*) FILTER (WHERE NOT (read_by @> ?::jsonb)) AS unread_count`, `["`+userId.String()+`"]`).
		Where("chat_id IN ?", chatIds).
		Group("chat_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	var latest []*model.Message
	query := applySpecifications(r.db.WithContext(ctx), specification.ByChatIDs{ChatIDs: chatIds})
	if err := query.Scopes(scope.LatestPerChat).Find(&latest).Error; err != nil {
		return nil, err
	}

	lastByChat := make(map[uuid.UUID]*model.Message, len(latest))
	for _, m := range latest {
		lastByChat[m.ChatId] = m
	}

	summaries := make([]*entity.ChatSummary, 0, len(stats))
	for _, s := range stats {
		summaries = append(summaries, &entity.ChatSummary{
			ChatId:       s.ChatId,
			LastMessage:  r.mapper.MessageToEntity(lastByChat[s.ChatId]),
			MessageCount: s.MessageCount,
			UnreadCount:  s.UnreadCount,
		})
	}
	return summaries, nil
}
