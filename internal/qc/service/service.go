package service

import (
	"errors"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/shared/cache"
	"github.com/bitfantasy/nimo-qc/internal/shared/sse"
	"github.com/bitfantasy/nimo-qc/internal/shared/storage"
	"go.uber.org/zap"
)

var (
	ErrInspectionClosed   = errors.New("inspection already completed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStorageUnavailable = errors.New("object storage not configured")
)

// Services 质检服务集合
type Services struct {
	Inspection *InspectionService
	CAPA       *CAPAService
	Analytics  *AnalyticsService
	Events     *sse.Hub
}

// NewServices 创建质检服务集合，store 为 nil 时照片上传不可用
func NewServices(repos *repository.Repositories, c cache.Cache, store storage.ObjectStore, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	analyticsSvc := NewAnalyticsService(repos, c, logger)
	capaSvc := NewCAPAService(repos, logger)
	capaSvc.SetAnalyticsService(analyticsSvc)

	inspectionSvc := NewInspectionService(repos, logger)
	inspectionSvc.SetCAPAService(capaSvc)
	inspectionSvc.SetAnalyticsService(analyticsSvc)
	inspectionSvc.SetObjectStore(store)
	events := sse.NewHub(logger)
	inspectionSvc.SetEventHub(events)

	return &Services{
		Inspection: inspectionSvc,
		CAPA:       capaSvc,
		Analytics:  analyticsSvc,
		Events:     events,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
