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

type WorkspaceMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewWorkspaceMemberRepository(db *gorm.DB) contract.WorkspaceMemberRepository {
	return &WorkspaceMemberRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *WorkspaceMemberRepositoryImpl) Create(ctx context.Context, member *entity.WorkspaceMember) error {
	m := r.mapper.WorkspaceMemberToModel(member)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.LastActive.IsZero() {
		m.LastActive = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*member = *r.mapper.WorkspaceMemberToEntity(m)
	return nil
}

func (r *WorkspaceMemberRepositoryImpl) FindByWorkspaceAndUser(ctx context.Context, workspaceId, userId uuid.UUID) (*entity.WorkspaceMember, error) {
	var m model.WorkspaceMember
	query := applySpecifications(r.db.WithContext(ctx), specification.ByMemberUser{WorkspaceID: workspaceId, UserID: userId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.WorkspaceMemberToEntity(&m), nil
}

func (r *WorkspaceMemberRepositoryImpl) FindByWorkspace(ctx context.Context, workspaceId uuid.UUID) ([]*entity.WorkspaceMember, error) {
	var models []*model.WorkspaceMember
	query := applySpecifications(r.db.WithContext(ctx),
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OrderBy{Field: "created_at"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WorkspaceMember, len(models))
	for i, m := range models {
		entities[i] = r.mapper.WorkspaceMemberToEntity(m)
	}
	return entities, nil
}

func (r *WorkspaceMemberRepositoryImpl) UpdatePosition(ctx context.Context, workspaceId, userId uuid.UUID, position entity.Position, at time.Time) (bool, error) {
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.WorkspaceMember{}),
		specification.ByMemberUser{WorkspaceID: workspaceId, UserID: userId},
	)
	result := query.Updates(map[string]interface{}{
		"position_x":  position.X,
		"position_y":  position.Y,
		"last_active": at,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
