package handler

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/gin-gonic/gin"
)

// SamplingHandler AQL抽样与缺陷目录处理器
type SamplingHandler struct{}

func NewSamplingHandler() *SamplingHandler {
	return &SamplingHandler{}
}

// 批次判定
const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"
)

type calculateRequest struct {
	LotSize         int    `json:"lot_size" binding:"required"`
	InspectionLevel string `json:"inspection_level"`
}

type planResponse struct {
	quality.SamplingPlan
	LotSize            int     `json:"lot_size"`
	SamplingPercentage float64 `json:"sampling_percentage"`
}

func newPlanResponse(lotSize int, plan quality.SamplingPlan) planResponse {
	return planResponse{
		SamplingPlan:       plan,
		LotSize:            lotSize,
		SamplingPercentage: quality.Round2(float64(plan.SampleSize) / float64(lotSize) * 100),
	}
}

// Calculate 计算抽样方案
// POST /api/v1/qc/aql/calculate
func (h *SamplingHandler) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.LotSize < 1 {
		BadRequest(c, "参数错误: lot_size must be at least 1")
		return
	}
	level, err := quality.ParseInspectionLevel(req.InspectionLevel)
	if err != nil {
		HandleError(c, err, "计算抽样方案失败")
		return
	}
	Success(c, newPlanResponse(req.LotSize, quality.ResolveSamplingPlan(level, req.LotSize)))
}

type evaluateRequest struct {
	LotSize         int    `json:"lot_size" binding:"required"`
	InspectionLevel string `json:"inspection_level"`
	DefectsFound    int    `json:"defects_found"`
}

// Evaluate 按抽样方案判定批次
// POST /api/v1/qc/aql/evaluate
func (h *SamplingHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.LotSize < 1 || req.DefectsFound < 0 {
		BadRequest(c, "参数错误: lot_size must be at least 1 and defects_found must not be negative")
		return
	}
	level, err := quality.ParseInspectionLevel(req.InspectionLevel)
	if err != nil {
		HandleError(c, err, "批次判定失败")
		return
	}

	plan := quality.ResolveSamplingPlan(level, req.LotSize)
	decision := DecisionAccept
	if quality.Judge(plan, req.DefectsFound) == quality.ResultFailed {
		decision = DecisionReject
	}
	Success(c, gin.H{
		"decision":      decision,
		"defects_found": req.DefectsFound,
		"plan":          newPlanResponse(req.LotSize, plan),
	})
}

// Table AQL表批量区间
// GET /api/v1/qc/aql/table?level=II
func (h *SamplingHandler) Table(c *gin.Context) {
	level, err := quality.ParseInspectionLevel(c.Query("level"))
	if err != nil {
		HandleError(c, err, "获取AQL表失败")
		return
	}
	ranges := quality.LotRanges()
	plans := make([]quality.SamplingPlan, 0, len(ranges))
	for _, r := range ranges {
		plan, _ := quality.LookupSamplingPlan(level, r.Min)
		plans = append(plans, plan)
	}
	Success(c, plans)
}

// ListDefectCodes 缺陷目录，不传 method 返回全部工艺
// GET /api/v1/qc/defect-codes?method=SILKSCREEN
func (h *SamplingHandler) ListDefectCodes(c *gin.Context) {
	if m := c.Query("method"); m != "" {
		method, err := quality.ParseProductionMethod(m)
		if err != nil {
			HandleError(c, err, "获取缺陷目录失败")
			return
		}
		Success(c, quality.DefectTypes(method))
		return
	}
	all := make(map[quality.ProductionMethod][]quality.DefectType, len(quality.Methods))
	for _, method := range quality.Methods {
		all[method] = quality.DefectTypes(method)
	}
	Success(c, all)
}

// ClassifyDefect 缺陷代码分类，未知代码按 MINOR 处理
// GET /api/v1/qc/defect-codes/:method/:code
func (h *SamplingHandler) ClassifyDefect(c *gin.Context) {
	method := quality.ProductionMethod(c.Param("method"))
	if parsed, err := quality.ParseProductionMethod(c.Param("method")); err == nil {
		method = parsed
	}
	code := c.Param("code")
	_, known := quality.LookupDefectType(method, code)
	Success(c, gin.H{
		"defect_type": quality.ClassifyDefect(method, code),
		"known":       known,
	})
}
