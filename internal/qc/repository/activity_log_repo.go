package repository

import (
	"context"
	"encoding/json"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLogRepository 操作日志仓库
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) WithTx(tx *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: tx}
}

// Create 创建操作日志
func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByEntity 查询某实体的操作日志
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, workspaceID, entityType, entityID string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	var items []entity.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).
		Where("workspace_id = ? AND entity_type = ? AND entity_id = ?", workspaceID, entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// Entry 日志条目
type Entry struct {
	WorkspaceID string
	EntityType  string
	EntityID    string
	EntityCode  string
	Action      string
	FromStatus  string
	ToStatus    string
	Content     string
	OperatorID  string
	Metadata    map[string]interface{}
}

// LogActivity 记录操作日志，与业务写入同事务时失败会回滚整个操作
func (r *ActivityLogRepository) LogActivity(ctx context.Context, e Entry) error {
	log := &entity.ActivityLog{
		ID:          uuid.New().String()[:32],
		WorkspaceID: e.WorkspaceID,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		EntityCode:  e.EntityCode,
		Action:      e.Action,
		FromStatus:  e.FromStatus,
		ToStatus:    e.ToStatus,
		Content:     e.Content,
		OperatorID:  e.OperatorID,
	}
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		log.Metadata = datatypes.JSON(raw)
	}
	return r.db.WithContext(ctx).Create(log).Error
}
