package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// InspectionHandler 质检单处理器
type InspectionHandler struct {
	svc *service.InspectionService
}

func NewInspectionHandler(svc *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{svc: svc}
}

// List 质检单列表
// GET /api/v1/qc/inspections?status=xxx&production_method=xxx&inspection_type=xxx&order_id=xxx&keyword=xxx
func (h *InspectionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":            c.Query("status"),
		"production_method": c.Query("production_method"),
		"inspection_type":   c.Query("inspection_type"),
		"order_id":          c.Query("order_id"),
		"keyword":           c.Query("keyword"),
	}

	items, total, err := h.svc.ListInspections(c.Request.Context(), GetWorkspaceID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取质检列表失败: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items:      items,
		Pagination: paginate(page, pageSize, total),
	})
}

// Create 创建质检单
// POST /api/v1/qc/inspections
func (h *InspectionHandler) Create(c *gin.Context) {
	var req service.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	inspection, err := h.svc.CreateInspection(c.Request.Context(), GetWorkspaceID(c), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "创建质检单失败")
		return
	}
	Created(c, inspection)
}

// Get 质检单详情
// GET /api/v1/qc/inspections/:id
func (h *InspectionHandler) Get(c *gin.Context) {
	detail, err := h.svc.GetInspection(c.Request.Context(), GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err, "获取质检单失败")
		return
	}
	Success(c, detail)
}

// Update 更新良品数/备注
// PUT /api/v1/qc/inspections/:id
func (h *InspectionHandler) Update(c *gin.Context) {
	var req service.UpdateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	inspection, err := h.svc.UpdateInspection(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "更新质检单失败")
		return
	}
	Success(c, inspection)
}

// Start 开始检验
// POST /api/v1/qc/inspections/:id/start
func (h *InspectionHandler) Start(c *gin.Context) {
	inspection, err := h.svc.StartInspection(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "开始检验失败")
		return
	}
	Success(c, inspection)
}

// Evaluate 按抽样方案判定
// GET /api/v1/qc/inspections/:id/evaluate
func (h *InspectionHandler) Evaluate(c *gin.Context) {
	ev, err := h.svc.Evaluate(c.Request.Context(), GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err, "检验判定失败")
		return
	}
	Success(c, ev)
}

// Complete 完成检验
// POST /api/v1/qc/inspections/:id/complete
func (h *InspectionHandler) Complete(c *gin.Context) {
	var req service.CompleteInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.svc.CompleteInspection(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "完成检验失败")
		return
	}
	Success(c, result)
}

// ExportReport 导出质检报告
// GET /api/v1/qc/inspections/:id/report
func (h *InspectionHandler) ExportReport(c *gin.Context) {
	f, filename, err := h.svc.ExportReport(c.Request.Context(), GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err, "导出报告失败")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

// Activity 操作日志
// GET /api/v1/qc/inspections/:id/activity
func (h *InspectionHandler) Activity(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListActivity(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err, "获取操作日志失败")
		return
	}
	Success(c, ListResponse{
		Items:      items,
		Pagination: paginate(page, pageSize, total),
	})
}
