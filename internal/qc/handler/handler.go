package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// 写操作所需权限
const PermissionWrite = "qc:write"

// Handlers 质检处理器集合
type Handlers struct {
	Inspection *InspectionHandler
	Defect     *DefectHandler
	CAPA       *CAPAHandler
	Sampling   *SamplingHandler
	Analytics  *AnalyticsHandler
	Event      *EventHandler
}

// NewHandlers 创建质检处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Inspection: NewInspectionHandler(svc.Inspection),
		Defect:     NewDefectHandler(svc.Inspection),
		CAPA:       NewCAPAHandler(svc.CAPA),
		Sampling:   NewSamplingHandler(),
		Analytics:  NewAnalyticsHandler(svc.Analytics),
		Event:      NewEventHandler(svc.Events),
	}
}

// Register 注册 /qc 路由，rg 须已挂载 JWT 认证
func (h *Handlers) Register(rg *gin.RouterGroup) {
	qc := rg.Group("/qc")
	write := middleware.RequirePermission(PermissionWrite)

	// 抽样与缺陷目录不依赖工作区
	qc.POST("/aql/calculate", h.Sampling.Calculate)
	qc.POST("/aql/evaluate", h.Sampling.Evaluate)
	qc.GET("/aql/table", h.Sampling.Table)
	qc.GET("/defect-codes", h.Sampling.ListDefectCodes)
	qc.GET("/defect-codes/:method/:code", h.Sampling.ClassifyDefect)

	ws := qc.Group("", middleware.RequireWorkspace())
	{
		inspections := ws.Group("/inspections")
		{
			inspections.GET("", h.Inspection.List)
			inspections.POST("", write, h.Inspection.Create)
			inspections.GET("/:id", h.Inspection.Get)
			inspections.PUT("/:id", write, h.Inspection.Update)
			inspections.POST("/:id/start", write, h.Inspection.Start)
			inspections.GET("/:id/evaluate", h.Inspection.Evaluate)
			inspections.POST("/:id/complete", write, h.Inspection.Complete)
			inspections.GET("/:id/report", h.Inspection.ExportReport)
			inspections.GET("/:id/activity", h.Inspection.Activity)

			inspections.POST("/:id/defects", write, h.Defect.Add)
			inspections.PUT("/:id/defects/:defectId", write, h.Defect.Update)
			inspections.DELETE("/:id/defects/:defectId", write, h.Defect.Remove)
			inspections.POST("/:id/defects/:defectId/photo", write, h.Defect.UploadPhoto)
		}

		capa := ws.Group("/capa")
		{
			capa.GET("", h.CAPA.List)
			capa.POST("", write, h.CAPA.Create)
			capa.GET("/:id", h.CAPA.Get)
			capa.PUT("/:id", write, h.CAPA.Update)
		}

		analytics := ws.Group("/analytics")
		{
			analytics.GET("/summary", h.Analytics.Summary)
			analytics.GET("/trends", h.Analytics.Trends)
			analytics.GET("/performance", h.Analytics.Performance)
		}

		ws.GET("/events", h.Event.Stream)
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError 按错误类型映射响应码
func HandleError(c *gin.Context, err error, prefix string) {
	switch {
	case quality.IsValidation(err):
		BadRequest(c, "参数错误: "+err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, prefix+": 记录不存在")
	case errors.Is(err, quality.ErrDefectNotFound):
		NotFound(c, prefix+": 缺陷不存在")
	case errors.Is(err, service.ErrInspectionClosed), errors.Is(err, service.ErrInvalidTransition):
		Conflict(c, prefix+": "+err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		Error(c, 50300, prefix+": "+err.Error())
	default:
		InternalError(c, prefix+": "+err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(middleware.KeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetWorkspaceID(c *gin.Context) string {
	return c.GetString(middleware.KeyWorkspaceID)
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func paginate(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
