package handler

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// 照片大小上限
const maxPhotoSize = 10 << 20

// DefectHandler 缺陷处理器
type DefectHandler struct {
	svc *service.InspectionService
}

func NewDefectHandler(svc *service.InspectionService) *DefectHandler {
	return &DefectHandler{svc: svc}
}

// Add 记录缺陷
// POST /api/v1/qc/inspections/:id/defects
func (h *DefectHandler) Add(c *gin.Context) {
	var req service.AddDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.svc.AddDefect(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "记录缺陷失败")
		return
	}
	Created(c, result)
}

// Update 修改缺陷
// PUT /api/v1/qc/inspections/:id/defects/:defectId
func (h *DefectHandler) Update(c *gin.Context) {
	var req service.UpdateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.svc.UpdateDefect(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), c.Param("defectId"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "修改缺陷失败")
		return
	}
	Success(c, result)
}

// Remove 删除缺陷
// DELETE /api/v1/qc/inspections/:id/defects/:defectId
func (h *DefectHandler) Remove(c *gin.Context) {
	result, err := h.svc.RemoveDefect(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), c.Param("defectId"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "删除缺陷失败")
		return
	}
	Success(c, result)
}

// UploadPhoto 上传缺陷照片（multipart 字段 file）
// POST /api/v1/qc/inspections/:id/defects/:defectId/photo
func (h *DefectHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传文件")
		return
	}
	if fileHeader.Size > maxPhotoSize {
		BadRequest(c, "文件大小不能超过10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取文件失败: "+err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	defect, err := h.svc.UploadDefectPhoto(c.Request.Context(), GetWorkspaceID(c), c.Param("id"), c.Param("defectId"),
		GetUserID(c), fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		HandleError(c, err, "上传照片失败")
		return
	}
	Success(c, defect)
}
