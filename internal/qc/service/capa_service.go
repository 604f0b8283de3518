package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CAPADueDays 自动生成的CAPA默认期限
const CAPADueDays = 7

// CAPAService 纠正预防措施服务
type CAPAService struct {
	repos     *repository.Repositories
	analytics *AnalyticsService
	logger    *zap.Logger
	now       func() time.Time
}

func NewCAPAService(repos *repository.Repositories, logger *zap.Logger) *CAPAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CAPAService{repos: repos, logger: logger, now: utcNow}
}

// SetAnalyticsService CAPA变更后清除统计缓存
func (s *CAPAService) SetAnalyticsService(svc *AnalyticsService) {
	s.analytics = svc
}

// List 获取CAPA列表
func (s *CAPAService) List(ctx context.Context, workspaceID string, page, pageSize int, filters map[string]string) ([]entity.CAPATask, int64, error) {
	return s.repos.CAPA.FindAll(ctx, workspaceID, page, pageSize, filters)
}

// Get 获取CAPA详情
func (s *CAPAService) Get(ctx context.Context, workspaceID, id string) (*entity.CAPATask, error) {
	return s.repos.CAPA.FindByID(ctx, workspaceID, id)
}

// CreateCAPARequest 创建CAPA请求
type CreateCAPARequest struct {
	InspectionID     string     `json:"inspection_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	Priority         string     `json:"priority"`
	RootCause        string     `json:"root_cause"`
	CorrectiveAction string     `json:"corrective_action"`
	PreventiveAction string     `json:"preventive_action"`
	AssignedTo       string     `json:"assigned_to"`
	DueDate          *time.Time `json:"due_date"`
}

// Create 手工创建CAPA
func (s *CAPAService) Create(ctx context.Context, workspaceID, userID string, req *CreateCAPARequest) (*entity.CAPATask, error) {
	if req.Title == "" {
		return nil, &quality.ValidationError{Field: "title", Message: "is required"}
	}
	if req.InspectionID != "" {
		if _, err := s.repos.Inspection.FindByID(ctx, workspaceID, req.InspectionID); err != nil {
			return nil, err
		}
	}
	typ := req.Type
	if typ == "" {
		typ = entity.CAPATypeCorrective
	}
	if typ != entity.CAPATypeCorrective && typ != entity.CAPATypePreventive {
		return nil, &quality.ValidationError{Field: "type", Message: fmt.Sprintf("unknown capa type %q", req.Type)}
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.CAPAPriorityMedium
	}
	if !entity.ValidCAPAPriority(priority) {
		return nil, &quality.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", req.Priority)}
	}

	now := s.now()
	task := &entity.CAPATask{
		ID:               uuid.New().String()[:32],
		WorkspaceID:      workspaceID,
		InspectionID:     req.InspectionID,
		Title:            req.Title,
		Description:      req.Description,
		Type:             typ,
		Priority:         priority,
		Source:           entity.CAPASourceManual,
		RootCause:        req.RootCause,
		CorrectiveAction: req.CorrectiveAction,
		PreventiveAction: req.PreventiveAction,
		Status:           entity.CAPAStatusOpen,
		AssignedTo:       req.AssignedTo,
		DueDate:          req.DueDate,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.repos.CAPA.Transaction(ctx, func(tx *gorm.DB) error {
		return s.insert(ctx, tx, task, userID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, workspaceID)
	return task, nil
}

// UpdateCAPARequest 更新CAPA请求
type UpdateCAPARequest struct {
	Status           *string    `json:"status"`
	Priority         *string    `json:"priority"`
	ProgressNotes    *string    `json:"progress_notes"`
	RootCause        *string    `json:"root_cause"`
	CorrectiveAction *string    `json:"corrective_action"`
	PreventiveAction *string    `json:"preventive_action"`
	AssignedTo       *string    `json:"assigned_to"`
	DueDate          *time.Time `json:"due_date"`
}

// Update 更新CAPA，状态只能按 open → in_progress → closed 流转；读取、校验、保存与日志在同一加锁事务内
func (s *CAPAService) Update(ctx context.Context, workspaceID, id, userID string, req *UpdateCAPARequest) (*entity.CAPATask, error) {
	if req.Priority != nil && !entity.ValidCAPAPriority(*req.Priority) {
		return nil, &quality.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", *req.Priority)}
	}

	var task *entity.CAPATask
	err := s.repos.CAPA.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		task, err = s.repos.CAPA.WithTx(tx).FindForUpdate(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		from := task.Status

		if req.Status != nil && *req.Status != task.Status {
			if !canTransition(task.Status, *req.Status) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, *req.Status)
			}
			task.Status = *req.Status
			if task.Status == entity.CAPAStatusClosed {
				now := s.now()
				task.ClosedAt = &now
			}
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		if req.ProgressNotes != nil {
			task.ProgressNotes = *req.ProgressNotes
		}
		if req.RootCause != nil {
			task.RootCause = *req.RootCause
		}
		if req.CorrectiveAction != nil {
			task.CorrectiveAction = *req.CorrectiveAction
		}
		if req.PreventiveAction != nil {
			task.PreventiveAction = *req.PreventiveAction
		}
		if req.AssignedTo != nil {
			task.AssignedTo = *req.AssignedTo
		}
		if req.DueDate != nil {
			task.DueDate = req.DueDate
		}
		task.UpdatedAt = s.now()

		if err := s.repos.CAPA.WithTx(tx).Update(ctx, task); err != nil {
			return err
		}
		return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
			WorkspaceID: workspaceID,
			EntityType:  entity.EntityTypeCAPA,
			EntityID:    task.ID,
			EntityCode:  task.CAPANumber,
			Action:      "update",
			FromStatus:  from,
			ToStatus:    task.Status,
			Content:     "更新CAPA",
			OperatorID:  userID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, workspaceID)
	return task, nil
}

func (s *CAPAService) invalidate(ctx context.Context, workspaceID string) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx, workspaceID)
	}
}

func canTransition(from, to string) bool {
	for _, next := range entity.ValidCAPATransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// createFromInspection 失败检验含致命缺陷时生成CAPA，与完成检验同事务
func (s *CAPAService) createFromInspection(ctx context.Context, tx *gorm.DB, inspection *entity.Inspection, agg *quality.Aggregator, userID string) (*entity.CAPATask, error) {
	var suggestions []string
	for _, d := range agg.Defects() {
		dt := quality.ClassifyDefect(agg.Method(), d.ReasonCode)
		if dt.Severity != quality.SeverityCritical {
			continue
		}
		suggestions = append(suggestions, fmt.Sprintf("Investigate root cause of %s (%s) x%d", dt.DisplayName, dt.Code, d.Quantity))
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due := now.AddDate(0, 0, CAPADueDays)
	task := &entity.CAPATask{
		ID:           uuid.New().String()[:32],
		WorkspaceID:  inspection.WorkspaceID,
		InspectionID: inspection.ID,
		Title:        fmt.Sprintf("Critical defects in %s", inspection.InspectionNumber),
		Description: fmt.Sprintf("Inspection %s failed with quality rate %.2f%% and %d critical defect(s).",
			inspection.InspectionNumber, agg.Metrics().QualityRate, agg.DefectsBySeverity()[quality.SeverityCritical]),
		Type:        entity.CAPATypeCorrective,
		Priority:    entity.CAPAPriorityCritical,
		Source:      entity.CAPASourceInspection,
		Suggestions: datatypes.JSON(raw),
		Status:      entity.CAPAStatusOpen,
		AssignedTo:  inspection.InspectorID,
		DueDate:     &due,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insert(ctx, tx, task, userID); err != nil {
		return nil, err
	}
	s.logger.Info("capa generated from failed inspection",
		zap.String("capa", task.CAPANumber),
		zap.String("inspection", inspection.InspectionNumber),
	)
	return task, nil
}

func (s *CAPAService) insert(ctx context.Context, tx *gorm.DB, task *entity.CAPATask, userID string) error {
	year := task.CreatedAt.Year()
	seq, err := s.repos.Sequence.WithTx(tx).Next(ctx, task.WorkspaceID, entity.CounterScopeCAPA, year, nil)
	if err != nil {
		return fmt.Errorf("generate capa number: %w", err)
	}
	task.CAPANumber = quality.FormatNumber(quality.CAPAPrefix, year, seq)

	if err := s.repos.CAPA.WithTx(tx).Create(ctx, task); err != nil {
		return err
	}
	return s.repos.ActivityLog.WithTx(tx).LogActivity(ctx, repository.Entry{
		WorkspaceID: task.WorkspaceID,
		EntityType:  entity.EntityTypeCAPA,
		EntityID:    task.ID,
		EntityCode:  task.CAPANumber,
		Action:      "create",
		ToStatus:    task.Status,
		Content:     task.Title,
		OperatorID:  userID,
		Metadata:    map[string]interface{}{"source": task.Source, "inspection_id": task.InspectionID},
	})
}
