package handler

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 质量统计处理器
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Summary 质量概览
// GET /api/v1/qc/analytics/summary?days=30
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), GetWorkspaceID(c), queryInt(c, "days", service.DefaultSummaryDays))
	if err != nil {
		InternalError(c, "获取质量概览失败: "+err.Error())
		return
	}
	Success(c, summary)
}

// Trends 缺陷趋势
// GET /api/v1/qc/analytics/trends?weeks=12
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	trends, err := h.svc.Trends(c.Request.Context(), GetWorkspaceID(c), queryInt(c, "weeks", service.DefaultTrendWeeks))
	if err != nil {
		InternalError(c, "获取缺陷趋势失败: "+err.Error())
		return
	}
	Success(c, trends)
}

// Performance 检验表现
// GET /api/v1/qc/analytics/performance?limit=100
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	items, err := h.svc.Performance(c.Request.Context(), GetWorkspaceID(c), queryInt(c, "limit", service.DefaultPerformanceSize))
	if err != nil {
		InternalError(c, "获取检验表现失败: "+err.Error())
		return
	}
	Success(c, items)
}
