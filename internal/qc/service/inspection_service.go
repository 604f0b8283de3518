package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/shared/sse"
	"github.com/bitfantasy/nimo-qc/internal/shared/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InspectionService 质检服务
type InspectionService struct {
	repos     *repository.Repositories
	capa      *CAPAService
	analytics *AnalyticsService
	store     storage.ObjectStore
	events    *sse.Hub
	logger    *zap.Logger
	now       func() time.Time
}

func NewInspectionService(repos *repository.Repositories, logger *zap.Logger) *InspectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InspectionService{
		repos:  repos,
		logger: logger,
		now:    utcNow,
	}
}

// SetCAPAService 注入CAPA服务，失败且含致命缺陷时自动生成CAPA
func (s *InspectionService) SetCAPAService(svc *CAPAService) {
	s.capa = svc
}

// SetAnalyticsService 注入统计服务，用于写入后失效缓存
func (s *InspectionService) SetAnalyticsService(svc *AnalyticsService) {
	s.analytics = svc
}

// SetObjectStore 注入对象存储
func (s *InspectionService) SetObjectStore(store storage.ObjectStore) {
	s.store = store
}

// SetEventHub 注入事件推送
func (s *InspectionService) SetEventHub(hub *sse.Hub) {
	s.events = hub
}

// ListInspections 获取质检单列表
func (s *InspectionService) ListInspections(ctx context.Context, workspaceID string, page, pageSize int, filters map[string]string) ([]entity.Inspection, int64, error) {
	return s.repos.Inspection.FindAll(ctx, workspaceID, page, pageSize, filters)
}

// InspectionDetail 质检单详情
type InspectionDetail struct {
	*entity.Inspection
	DefectsBySeverity map[quality.Severity]int                       `json:"defects_by_severity"`
	CostByAttribution map[quality.CostAttribution]decimal.Decimal `json:"cost_by_attribution"`
	QualityBand       string                                         `json:"quality_band"`
	ReviewRequired    bool                                           `json:"review_required"`
}

// GetInspection 获取质检单详情
func (s *InspectionService) GetInspection(ctx context.Context, workspaceID, id string) (*InspectionDetail, error) {
	inspection, err := s.repos.Inspection.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	agg := aggregatorFor(inspection)
	return &InspectionDetail{
		Inspection:        inspection,
		DefectsBySeverity: agg.DefectsBySeverity(),
		CostByAttribution: agg.CostByAttribution(),
		QualityBand:       quality.QualityBand(inspection.QualityRate),
		ReviewRequired:    quality.ReviewRequired(inspection.FinalApproval, inspection.QualityRate),
	}, nil
}

// CreateInspectionRequest 创建质检单请求
type CreateInspectionRequest struct {
	OrderID          string `json:"order_id"`
	BundleID         string `json:"bundle_id"`
	ProductionMethod string `json:"production_method"`
	InspectionType   string `json:"inspection_type"`
	InspectionLevel  string `json:"inspection_level"`
	LotSize          int    `json:"lot_size"`
	SampleSize       *int   `json:"sample_size"`
	TotalGood        int    `json:"total_good"`
	InspectorNotes   string `json:"inspector_notes"`
}

// CreateInspection 创建质检单：解析抽样方案并分配年度编号
func (s *InspectionService) CreateInspection(ctx context.Context, workspaceID, userID string, req *CreateInspectionRequest) (*entity.Inspection, error) {
	method, err := quality.ParseProductionMethod(req.ProductionMethod)
	if err != nil {
		return nil, err
	}
	level, err := quality.ParseInspectionLevel(req.InspectionLevel)
	if err != nil {
		return nil, err
	}
	if req.LotSize < 1 {
		return nil, &quality.ValidationError{Field: "lot_size", Message: "must be at least 1"}
	}
	if req.TotalGood < 0 {
		return nil, &quality.ValidationError{Field: "total_good", Message: "must not be negative"}
	}

	plan := quality.ResolveSamplingPlan(level, req.LotSize)
	if req.SampleSize != nil {
		if *req.SampleSize < 1 {
			return nil, &quality.ValidationError{Field: "sample_size", Message: "must be at least 1"}
		}
		plan.SampleSize = *req.SampleSize
	}
	metrics := quality.ComputeMetrics(req.TotalGood, nil)
	now := s.now()

	inspection := &entity.Inspection{
		ID:               uuid.New().String()[:32],
		WorkspaceID:      workspaceID,
		OrderID:          req.OrderID,
		BundleID:         req.BundleID,
		ProductionMethod: string(method),
		InspectionType:   req.InspectionType,
		InspectionLevel:  string(plan.Level),
		LotSize:          req.LotSize,
		SampleSize:       plan.SampleSize,
		AcceptNumber:     plan.AcceptNumber,
		RejectNumber:     plan.RejectNumber,
		SamplingRange:    plan.Range,
		SamplingFallback: plan.Fallback,
		Status:           entity.InspectionStatusOpen,
		InspectorNotes:   req.InspectorNotes,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	inspection.ApplyMetrics(metrics)

	err = s.repos.Inspection.Transaction(ctx, func(tx *gorm.DB) error {
		number, err := s.nextInspectionNumber(ctx, tx, workspaceID, now.Year())
		if err != nil {
			return fmt.Errorf("generate inspection number: %w", err)
		}
		inspection.InspectionNumber = number

		if err := s.repos.Inspection.WithTx(tx).Create(ctx, inspection); err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "create",
			ToStatus:    inspection.Status,
			Content:     fmt.Sprintf("创建质检单 %s", inspection.InspectionNumber),
			OperatorID:  userID,
			Metadata: map[string]interface{}{
				"lot_size":          inspection.LotSize,
				"inspection_level":  inspection.InspectionLevel,
				"sample_size":       inspection.SampleSize,
				"sampling_range":    inspection.SamplingRange,
				"sampling_fallback": inspection.SamplingFallback,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if plan.Fallback {
		s.logger.Warn("lot size outside AQL table, using last row",
			zap.String("inspection", inspection.InspectionNumber),
			zap.Int("lot_size", req.LotSize),
		)
	}
	s.invalidate(ctx, workspaceID)
	s.publish(inspection, "create")
	return inspection, nil
}

// nextInspectionNumber 分配 QC-yyyy-nnnnnn，计数器首次使用时从当年最新编号续号
func (s *InspectionService) nextInspectionNumber(ctx context.Context, tx *gorm.DB, workspaceID string, year int) (string, error) {
	seq, err := s.repos.Sequence.WithTx(tx).Next(ctx, workspaceID, entity.CounterScopeInspection, year,
		func(ctx context.Context, tx *gorm.DB) (int, error) {
			latest, err := s.repos.Inspection.WithTx(tx).FindLatestNumberForYear(ctx, workspaceID, year)
			if err != nil {
				return 0, err
			}
			next, err := quality.NextSequence(latest)
			if err != nil {
				return 0, err
			}
			return next - 1, nil
		})
	if err != nil {
		return "", err
	}
	return quality.FormatInspectionNumber(year, seq), nil
}

// UpdateInspectionRequest 更新质检单请求
type UpdateInspectionRequest struct {
	TotalGood      *int    `json:"total_good"`
	InspectionType *string `json:"inspection_type"`
	InspectorNotes *string `json:"inspector_notes"`
	InspectorID    *string `json:"inspector_id"`
}

// UpdateInspection 更新良品数/备注
func (s *InspectionService) UpdateInspection(ctx context.Context, workspaceID, id, userID string, req *UpdateInspectionRequest) (*entity.Inspection, error) {
	return s.mutate(ctx, workspaceID, id, "update", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		from := inspection.TotalGood
		if req.TotalGood != nil {
			if err := agg.SetTotalGood(*req.TotalGood); err != nil {
				return err
			}
		}
		if req.InspectionType != nil {
			inspection.InspectionType = *req.InspectionType
		}
		if req.InspectorNotes != nil {
			inspection.InspectorNotes = *req.InspectorNotes
		}
		if req.InspectorID != nil {
			inspection.InspectorID = *req.InspectorID
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "update",
			Content:     "更新质检单",
			OperatorID:  userID,
			Metadata: map[string]interface{}{
				"total_good_from": from,
				"total_good_to":   agg.TotalGood(),
			},
		})
	})
}

// StartInspection 开始检验
func (s *InspectionService) StartInspection(ctx context.Context, workspaceID, id, userID string) (*entity.Inspection, error) {
	return s.mutate(ctx, workspaceID, id, "start", func(tx *gorm.DB, inspection *entity.Inspection, _ *quality.Aggregator) error {
		if inspection.StartedAt != nil {
			return nil
		}
		now := s.now()
		inspection.StartedAt = &now
		if inspection.InspectorID == "" {
			inspection.InspectorID = userID
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "start",
			Content:     "开始检验",
			OperatorID:  userID,
		})
	})
}

// AddDefectRequest 新增缺陷请求
type AddDefectRequest struct {
	ReasonCode      string          `json:"reason_code"`
	Quantity        int             `json:"quantity"`
	CostAttribution string          `json:"cost_attribution"`
	CostImpact      decimal.Decimal `json:"cost_impact"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
}

// DefectResult 缺陷变更结果
type DefectResult struct {
	Defect  *entity.Defect         `json:"defect,omitempty"`
	Metrics quality.QualityMetrics `json:"metrics"`
}

// AddDefect 新增缺陷并重算指标
func (s *InspectionService) AddDefect(ctx context.Context, workspaceID, inspectionID, userID string, req *AddDefectRequest) (*DefectResult, error) {
	var defect *entity.Defect
	inspection, err := s.mutate(ctx, workspaceID, inspectionID, "add_defect", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		rec, err := agg.AddDefect(quality.DefectInput{
			ReasonCode:      req.ReasonCode,
			Quantity:        req.Quantity,
			CostAttribution: quality.CostAttribution(strings.ToUpper(req.CostAttribution)),
			CostImpact:      req.CostImpact,
			Location:        req.Location,
			Description:     req.Description,
		})
		if err != nil {
			return err
		}
		now := s.now()
		defect = &entity.Defect{
			WorkspaceID:  workspaceID,
			InspectionID: inspection.ID,
			CreatedBy:    userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		defect.Apply(agg.Method(), rec)
		if err := s.repos.Defect.WithTx(tx).Create(ctx, defect); err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "add_defect",
			Content:     fmt.Sprintf("记录缺陷 %s x%d", defect.DisplayName, defect.Quantity),
			OperatorID:  userID,
			Metadata: map[string]interface{}{
				"defect_id":   defect.ID,
				"reason_code": defect.ReasonCode,
				"severity":    defect.Severity,
				"quantity":    defect.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &DefectResult{Defect: defect, Metrics: metricsOf(inspection)}, nil
}

// UpdateDefectRequest 更新缺陷请求，未传字段保持不变
type UpdateDefectRequest struct {
	ReasonCode      *string          `json:"reason_code"`
	Quantity        *int             `json:"quantity"`
	CostAttribution *string          `json:"cost_attribution"`
	CostImpact      *decimal.Decimal `json:"cost_impact"`
	Location        *string          `json:"location"`
	Description     *string          `json:"description"`
}

func (r *UpdateDefectRequest) patch() quality.DefectPatch {
	p := quality.DefectPatch{
		ReasonCode:  r.ReasonCode,
		Quantity:    r.Quantity,
		CostImpact:  r.CostImpact,
		Location:    r.Location,
		Description: r.Description,
	}
	if r.CostAttribution != nil {
		a := quality.CostAttribution(strings.ToUpper(*r.CostAttribution))
		p.CostAttribution = &a
	}
	return p
}

// UpdateDefect 修改缺陷并重算指标
func (s *InspectionService) UpdateDefect(ctx context.Context, workspaceID, inspectionID, defectID, userID string, req *UpdateDefectRequest) (*DefectResult, error) {
	var defect *entity.Defect
	inspection, err := s.mutate(ctx, workspaceID, inspectionID, "update_defect", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		var err error
		defect, err = s.patchDefect(ctx, tx, inspection, agg, defectID, req.patch())
		if err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "update_defect",
			Content:     fmt.Sprintf("修改缺陷 %s", defect.DisplayName),
			OperatorID:  userID,
			Metadata: map[string]interface{}{
				"defect_id":   defect.ID,
				"reason_code": defect.ReasonCode,
				"quantity":    defect.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &DefectResult{Defect: defect, Metrics: metricsOf(inspection)}, nil
}

func (s *InspectionService) patchDefect(ctx context.Context, tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator, defectID string, p quality.DefectPatch) (*entity.Defect, error) {
	rec, err := agg.UpdateDefect(defectID, p)
	if err != nil {
		return nil, err
	}
	for i := range inspection.Defects {
		d := &inspection.Defects[i]
		if d.ID != defectID {
			continue
		}
		d.Apply(agg.Method(), rec)
		d.UpdatedAt = s.now()
		if err := s.repos.Defect.WithTx(tx).Update(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, quality.ErrDefectNotFound
}

// RemoveDefect 删除缺陷并重算指标
func (s *InspectionService) RemoveDefect(ctx context.Context, workspaceID, inspectionID, defectID, userID string) (*DefectResult, error) {
	inspection, err := s.mutate(ctx, workspaceID, inspectionID, "remove_defect", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		if err := agg.RemoveDefect(defectID); err != nil {
			return err
		}
		if err := s.repos.Defect.WithTx(tx).Delete(ctx, inspection.ID, defectID); err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "remove_defect",
			Content:     "删除缺陷",
			OperatorID:  userID,
			Metadata:    map[string]interface{}{"defect_id": defectID},
		})
	})
	if err != nil {
		return nil, err
	}
	return &DefectResult{Metrics: metricsOf(inspection)}, nil
}

// UploadDefectPhoto 上传缺陷照片并写入 photo_ref
func (s *InspectionService) UploadDefectPhoto(ctx context.Context, workspaceID, inspectionID, defectID, userID, filename, contentType string, size int64, r io.Reader) (*entity.Defect, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	// 先确认缺陷存在，避免产生孤儿对象
	inspection, err := s.repos.Inspection.FindByID(ctx, workspaceID, inspectionID)
	if err != nil {
		return nil, err
	}
	if inspection.Closed() {
		return nil, ErrInspectionClosed
	}
	found := false
	for _, d := range inspection.Defects {
		if d.ID == defectID {
			found = true
			break
		}
	}
	if !found {
		return nil, quality.ErrDefectNotFound
	}

	key := fmt.Sprintf("qc/%s/%s/%s/%s%s", workspaceID, inspectionID, defectID,
		uuid.New().String()[:8], strings.ToLower(path.Ext(filename)))
	ref, err := s.store.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, err
	}

	var defect *entity.Defect
	_, err = s.mutate(ctx, workspaceID, inspectionID, "upload_photo", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		var err error
		defect, err = s.patchDefect(ctx, tx, inspection, agg, defectID, quality.DefectPatch{PhotoRef: &ref})
		if err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "upload_photo",
			Content:     "上传缺陷照片",
			OperatorID:  userID,
			Metadata:    map[string]interface{}{"defect_id": defectID, "photo_ref": ref},
		})
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("failed to remove orphan photo", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, err
	}
	return defect, nil
}

// InspectionEvaluation 检验判定
type InspectionEvaluation struct {
	quality.Evaluation
	CostByAttribution map[quality.CostAttribution]decimal.Decimal `json:"cost_by_attribution"`
	ReviewRequired    bool                                           `json:"review_required"`
}

// Evaluate 按抽样方案判定，不落库
func (s *InspectionService) Evaluate(ctx context.Context, workspaceID, id string) (*InspectionEvaluation, error) {
	inspection, err := s.repos.Inspection.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return evaluationOf(inspection, aggregatorFor(inspection)), nil
}

func evaluationOf(inspection *entity.Inspection, agg *quality.Aggregator) *InspectionEvaluation {
	ev := agg.Evaluate(inspection.Plan())
	return &InspectionEvaluation{
		Evaluation:        ev,
		CostByAttribution: agg.CostByAttribution(),
		ReviewRequired:    quality.ReviewRequired(inspection.FinalApproval, ev.Metrics.QualityRate),
	}
}

// CompleteInspectionRequest 完成检验请求
type CompleteInspectionRequest struct {
	FinalApproval  bool   `json:"final_approval"`
	InspectorNotes string `json:"inspector_notes"`
	Disposition    string `json:"disposition"`
}

// CompleteResult 完成检验结果
type CompleteResult struct {
	Inspection *entity.Inspection    `json:"inspection"`
	Evaluation *InspectionEvaluation `json:"evaluation"`
	CAPA       *entity.CAPATask      `json:"capa,omitempty"`
}

// 处置方式
const (
	DispositionAccept = "ACCEPT"
	DispositionRework = "REWORK"
)

// CompleteInspection 完成检验：写入判定结果，失败且含致命缺陷时生成CAPA
func (s *InspectionService) CompleteInspection(ctx context.Context, workspaceID, id, userID string, req *CompleteInspectionRequest) (*CompleteResult, error) {
	result := &CompleteResult{}
	inspection, err := s.mutate(ctx, workspaceID, id, "complete", func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error {
		now := s.now()
		inspection.FinalApproval = req.FinalApproval
		if req.InspectorNotes != "" {
			inspection.InspectorNotes = req.InspectorNotes
		}
		ev := evaluationOf(inspection, agg)
		result.Evaluation = ev

		from := inspection.Status
		inspection.Status = string(ev.Status)
		inspection.Disposition = req.Disposition
		if inspection.Disposition == "" {
			inspection.Disposition = DispositionAccept
			if ev.Status == quality.ResultFailed {
				inspection.Disposition = DispositionRework
			}
		}
		if inspection.StartedAt == nil {
			inspection.StartedAt = &now
		}
		inspection.CompletedAt = &now

		if ev.ReviewRequired {
			s.logger.Info("approved inspection below review threshold",
				zap.String("inspection", inspection.InspectionNumber),
				zap.Float64("quality_rate", ev.Metrics.QualityRate),
			)
		}

		if err := s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeInspection,
			EntityID:    inspection.ID,
			EntityCode:  inspection.InspectionNumber,
			Action:      "complete",
			FromStatus:  from,
			ToStatus:    inspection.Status,
			Content:     fmt.Sprintf("完成检验: %s", inspection.Status),
			OperatorID:  userID,
			Metadata: map[string]interface{}{
				"quality_rate":    ev.Metrics.QualityRate,
				"defective_count": ev.DefectiveCount,
				"final_approval":  inspection.FinalApproval,
				"review_required": ev.ReviewRequired,
			},
		}); err != nil {
			return err
		}

		if ev.Status == quality.ResultFailed && agg.HasSeverity(quality.SeverityCritical) && s.capa != nil {
			task, err := s.capa.createFromInspection(ctx, tx, inspection, agg, userID)
			if err != nil {
				return fmt.Errorf("generate capa: %w", err)
			}
			result.CAPA = task
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Inspection = inspection
	return result, nil
}

// ListActivity 获取质检单操作日志
func (s *InspectionService) ListActivity(ctx context.Context, workspaceID, id string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	if _, err := s.repos.Inspection.FindByID(ctx, workspaceID, id); err != nil {
		return nil, 0, err
	}
	return s.repos.ActivityLog.FindByEntity(ctx, workspaceID, entity.EntityTypeInspection, id, page, pageSize)
}

type mutation func(tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator) error

// mutate 在持有行锁的事务内加载聚合器、执行变更并写回指标，同一质检单的写入串行化
func (s *InspectionService) mutate(ctx context.Context, workspaceID, id, action string, fn mutation) (*entity.Inspection, error) {
	var inspection *entity.Inspection
	err := s.repos.Inspection.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		inspection, err = s.repos.Inspection.WithTx(tx).FindForUpdate(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		if inspection.Closed() {
			return ErrInspectionClosed
		}
		agg := aggregatorFor(inspection)
		if err := fn(tx, inspection, agg); err != nil {
			return err
		}
		inspection.ApplyMetrics(agg.Metrics())
		inspection.UpdatedAt = s.now()
		return s.repos.Inspection.WithTx(tx).Update(ctx, inspection)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, workspaceID)
	s.publish(inspection, action)
	return inspection, nil
}

// publish 推送质检单变更事件
func (s *InspectionService) publish(inspection *entity.Inspection, action string) {
	if s.events == nil {
		return
	}
	s.events.Publish(inspection.WorkspaceID, sse.EventInspectionUpdate, InspectionEvent{
		InspectionID:     inspection.ID,
		InspectionNumber: inspection.InspectionNumber,
		Action:           action,
		Status:           inspection.Status,
		QualityRate:      inspection.QualityRate,
	})
}

// InspectionEvent 质检单变更事件载荷
type InspectionEvent struct {
	InspectionID     string  `json:"inspection_id"`
	InspectionNumber string  `json:"inspection_number"`
	Action           string  `json:"action"`
	Status           string  `json:"status"`
	QualityRate      float64 `json:"quality_rate"`
}

func (s *InspectionService) invalidate(ctx context.Context, workspaceID string) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx, workspaceID)
	}
}

func aggregatorFor(inspection *entity.Inspection) *quality.Aggregator {
	records := make([]quality.DefectRecord, 0, len(inspection.Defects))
	for i := range inspection.Defects {
		records = append(records, inspection.Defects[i].Record())
	}
	return quality.NewAggregator(quality.ProductionMethod(inspection.ProductionMethod), inspection.TotalGood, records)
}

func metricsOf(inspection *entity.Inspection) quality.QualityMetrics {
	return quality.QualityMetrics{
		TotalGood:      inspection.TotalGood,
		TotalRejected:  inspection.TotalRejected,
		TotalProduced:  inspection.TotalProduced,
		QualityRate:    inspection.QualityRate,
		DefectRate:     inspection.DefectRate,
		FirstPassYield: inspection.FirstPassYield,
	}
}
