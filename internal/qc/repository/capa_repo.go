package repository

import (
	"context"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
)

// CAPARepository CAPA仓库
type CAPARepository struct {
	db *gorm.DB
}

func NewCAPARepository(db *gorm.DB) *CAPARepository {
	return &CAPARepository{db: db}
}

func (r *CAPARepository) WithTx(tx *gorm.DB) *CAPARepository {
	return &CAPARepository{db: tx}
}

// Transaction 在事务中执行
func (r *CAPARepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// FindAll 查询CAPA列表
func (r *CAPARepository) FindAll(ctx context.Context, workspaceID string, page, pageSize int, filters map[string]string) ([]entity.CAPATask, int64, error) {
	var items []entity.CAPATask
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CAPATask{}).Where("workspace_id = ?", workspaceID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if inspectionID := filters["inspection_id"]; inspectionID != "" {
		query = query.Where("inspection_id = ?", inspectionID)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}

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

// FindByID 根据ID查找CAPA
func (r *CAPARepository) FindByID(ctx context.Context, workspaceID, id string) (*entity.CAPATask, error) {
	var task entity.CAPATask
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// FindForUpdate 加锁读取CAPA，须在事务内调用
func (r *CAPARepository) FindForUpdate(ctx context.Context, workspaceID, id string) (*entity.CAPATask, error) {
	var task entity.CAPATask
	err := forUpdate(r.db.WithContext(ctx)).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *CAPARepository) Create(ctx context.Context, task *entity.CAPATask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *CAPARepository) Update(ctx context.Context, task *entity.CAPATask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// CountOpen 未关闭的CAPA数量
func (r *CAPARepository) CountOpen(ctx context.Context, workspaceID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.CAPATask{}).
		Where("workspace_id = ? AND status <> ?", workspaceID, entity.CAPAStatusClosed).
		Count(&n).Error
	return n, err
}
