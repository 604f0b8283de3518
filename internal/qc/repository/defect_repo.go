package repository

import (
	"context"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
)

// DefectRepository 缺陷仓库
type DefectRepository struct {
	db *gorm.DB
}

func NewDefectRepository(db *gorm.DB) *DefectRepository {
	return &DefectRepository{db: db}
}

func (r *DefectRepository) WithTx(tx *gorm.DB) *DefectRepository {
	return &DefectRepository{db: tx}
}

// FindByInspection 查询质检单的缺陷
func (r *DefectRepository) FindByInspection(ctx context.Context, inspectionID string) ([]entity.Defect, error) {
	var items []entity.Defect
	err := r.db.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *DefectRepository) Create(ctx context.Context, defect *entity.Defect) error {
	return r.db.WithContext(ctx).Create(defect).Error
}

func (r *DefectRepository) Update(ctx context.Context, defect *entity.Defect) error {
	return r.db.WithContext(ctx).Save(defect).Error
}

// Delete 删除缺陷
func (r *DefectRepository) Delete(ctx context.Context, inspectionID, id string) error {
	result := r.db.WithContext(ctx).
		Where("inspection_id = ? AND id = ?", inspectionID, id).
		Delete(&entity.Defect{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
