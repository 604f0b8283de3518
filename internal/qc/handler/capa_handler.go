package handler

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// CAPAHandler CAPA处理器
type CAPAHandler struct {
	svc *service.CAPAService
}

func NewCAPAHandler(svc *service.CAPAService) *CAPAHandler {
	return &CAPAHandler{svc: svc}
}

// List CAPA列表
// GET /api/v1/qc/capa?status=xxx&inspection_id=xxx&priority=xxx
func (h *CAPAHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":        c.Query("status"),
		"inspection_id": c.Query("inspection_id"),
		"priority":      c.Query("priority"),
	}

	items, total, err := h.svc.List(c.Request.Context(), GetWorkspaceID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取CAPA列表失败: "+err.Error())
		return
	}
	Success(c, ListResponse{
		Items:      items,
		Pagination: paginate(page, pageSize, total),
	})
}

// Get CAPA详情
// GET /api/v1/qc/capa/:id
func (h *CAPAHandler) Get(c *gin.Context) {
	task, err := h.svc.Get(c.Request.Context(), GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err, "获取CAPA失败")
		return
	}
	Success(c, task)
}

// Create 创建CAPA
// POST /api/v1/qc/capa
func (h *CAPAHandler) Create(c *gin.Context) {
	var req service.CreateCAPARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	task, err := h.svc.Create(c.Request.Context(), GetWorkspaceID(c), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "创建CAPA失败")
		return
	}
	Created(c, task)
}

// Update 更新CAPA
// PUT /api/v1/qc/capa/:id
func (h *CAPAHandler) Update(c *gin.Context) {
	var req service.UpdateCAPARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	task, err := h.svc.Update(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "更新CAPA失败")
		return
	}
	Success(c, task)
}
