package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"gorm.io/gorm"
)

// InspectionRepository 质检单仓库
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// WithTx 绑定事务
func (r *InspectionRepository) WithTx(tx *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: tx}
}

// Transaction 在事务中执行
func (r *InspectionRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// FindAll 查询质检单列表
func (r *InspectionRepository) FindAll(ctx context.Context, workspaceID string, page, pageSize int, filters map[string]string) ([]entity.Inspection, int64, error) {
	var items []entity.Inspection
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Inspection{}).Where("workspace_id = ?", workspaceID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if method := filters["production_method"]; method != "" {
		query = query.Where("production_method = ?", method)
	}
	if typ := filters["inspection_type"]; typ != "" {
		query = query.Where("inspection_type = ?", typ)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("inspection_number LIKE ?", "%"+keyword+"%")
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

// FindByID 根据ID查找质检单（含缺陷）
func (r *InspectionRepository) FindByID(ctx context.Context, workspaceID, id string) (*entity.Inspection, error) {
	var inspection entity.Inspection
	err := r.db.WithContext(ctx).
		Preload("Defects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&inspection).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &inspection, nil
}

// FindForUpdate 加锁读取质检单及其缺陷，须在事务内调用
func (r *InspectionRepository) FindForUpdate(ctx context.Context, workspaceID, id string) (*entity.Inspection, error) {
	var inspection entity.Inspection
	err := forUpdate(r.db.WithContext(ctx)).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&inspection).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.db.WithContext(ctx).
		Where("inspection_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&inspection.Defects).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

// Create 创建质检单
func (r *InspectionRepository) Create(ctx context.Context, inspection *entity.Inspection) error {
	return r.db.WithContext(ctx).Omit("Defects").Create(inspection).Error
}

// Update 更新质检单（不级联缺陷）
func (r *InspectionRepository) Update(ctx context.Context, inspection *entity.Inspection) error {
	return r.db.WithContext(ctx).Omit("Defects").Save(inspection).Error
}

// FindLatestNumberForYear 查找当年最新的质检编号
func (r *InspectionRepository) FindLatestNumberForYear(ctx context.Context, workspaceID string, year int) (string, error) {
	start, end := quality.YearBounds(year, time.UTC)

	var latest entity.Inspection
	err := r.db.WithContext(ctx).
		Select("inspection_number").
		Where("workspace_id = ? AND created_at >= ? AND created_at < ?", workspaceID, start, end).
		Order("created_at DESC, inspection_number DESC").
		Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return latest.InspectionNumber, nil
}

// FindRecent 最近的质检单
func (r *InspectionRepository) FindRecent(ctx context.Context, workspaceID string, limit int) ([]entity.Inspection, error) {
	var items []entity.Inspection
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
