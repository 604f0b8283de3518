package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
)

// AnalyticsRepository 质量统计查询
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// StatusCount 按状态计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ReasonCount 按缺陷代码汇总
type ReasonCount struct {
	ReasonCode string `json:"reason_code"`
	DefectRows int64  `json:"defect_rows"`
	Quantity   int64  `json:"quantity"`
}

// DefectPoint 缺陷时间点
type DefectPoint struct {
	CreatedAt time.Time
	Quantity  int
}

// CountByStatus 统计期内各状态质检单数量
func (r *AnalyticsRepository) CountByStatus(ctx context.Context, workspaceID string, since time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&entity.Inspection{}).
		Select("status, COUNT(*) AS count").
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// DefectTotals 统计期内缺陷条数与数量
func (r *AnalyticsRepository) DefectTotals(ctx context.Context, workspaceID string, since time.Time) (rows int64, quantity int64, err error) {
	var out struct {
		DefectRows int64
		Quantity   int64
	}
	err = r.db.WithContext(ctx).Model(&entity.Defect{}).
		Select("COUNT(*) AS defect_rows, COALESCE(SUM(quantity), 0) AS quantity").
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Scan(&out).Error
	return out.DefectRows, out.Quantity, err
}

// TopReasonCodes 缺陷数量最多的代码
func (r *AnalyticsRepository) TopReasonCodes(ctx context.Context, workspaceID string, since time.Time, limit int) ([]ReasonCount, error) {
	var rows []ReasonCount
	err := r.db.WithContext(ctx).Model(&entity.Defect{}).
		Select("reason_code, COUNT(*) AS defect_rows, SUM(quantity) AS quantity").
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Group("reason_code").
		Order("quantity DESC, reason_code ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DefectPoints 统计期内缺陷明细时间点，分桶在服务层完成
func (r *AnalyticsRepository) DefectPoints(ctx context.Context, workspaceID string, since time.Time) ([]DefectPoint, error) {
	var rows []DefectPoint
	err := r.db.WithContext(ctx).Model(&entity.Defect{}).
		Select("created_at, quantity").
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

// DefectCountsByInspection 各质检单缺陷条数
func (r *AnalyticsRepository) DefectCountsByInspection(ctx context.Context, inspectionIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(inspectionIDs))
	if len(inspectionIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		InspectionID string
		Count        int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Defect{}).
		Select("inspection_id, COUNT(*) AS count").
		Where("inspection_id IN ?", inspectionIDs).
		Group("inspection_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.InspectionID] = row.Count
	}
	return out, nil
}
