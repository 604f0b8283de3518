package entity

import (
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/shopspring/decimal"
)

// Inspection 质检单
type Inspection struct {
	ID               string `json:"id" gorm:"primaryKey;size:32"`
	WorkspaceID      string `json:"workspace_id" gorm:"size:32;not null;uniqueIndex:idx_qc_inspection_number"`
	InspectionNumber string `json:"inspection_number" gorm:"size:32;not null;uniqueIndex:idx_qc_inspection_number"`
	OrderID          string `json:"order_id" gorm:"size:32;index"`
	BundleID         string `json:"bundle_id" gorm:"size:32"`

	// 检验方案
	ProductionMethod string `json:"production_method" gorm:"size:20;not null"` // SILKSCREEN/SUBLIMATION/DTF/EMBROIDERY
	InspectionType   string `json:"inspection_type" gorm:"size:30"`            // INLINE_PRINTING/INLINE_SEWING/FINAL
	InspectionLevel  string `json:"inspection_level" gorm:"size:5;not null"`   // I/II/III
	LotSize          int    `json:"lot_size" gorm:"not null"`
	SampleSize       int    `json:"sample_size"`
	AcceptNumber     int    `json:"accept_number"`
	RejectNumber     int    `json:"reject_number"`
	SamplingRange    string `json:"sampling_range" gorm:"size:20"`
	SamplingFallback bool   `json:"sampling_fallback"`

	// 质量指标（每次缺陷变更后重算）
	TotalGood      int     `json:"total_good"`
	TotalRejected  int     `json:"total_rejected"`
	TotalProduced  int     `json:"total_produced"`
	QualityRate    float64 `json:"quality_rate"`
	DefectRate     float64 `json:"defect_rate"`
	FirstPassYield float64 `json:"first_pass_yield"`

	Status         string `json:"status" gorm:"size:10;default:OPEN;index"` // OPEN/PASSED/FAILED
	Disposition    string `json:"disposition" gorm:"size:20"`
	InspectorNotes string `json:"inspector_notes" gorm:"type:text"`
	FinalApproval  bool   `json:"final_approval"`

	InspectorID string     `json:"inspector_id" gorm:"size:32"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Defects []Defect `json:"defects,omitempty" gorm:"foreignKey:InspectionID"`
}

func (Inspection) TableName() string {
	return "qc_inspections"
}

// 质检状态
const (
	InspectionStatusOpen   = "OPEN"
	InspectionStatusPassed = string(quality.ResultPassed)
	InspectionStatusFailed = string(quality.ResultFailed)
)

// Closed 完成后不可再修改
func (i *Inspection) Closed() bool {
	return i.CompletedAt != nil
}

// Plan 还原抽样方案
func (i *Inspection) Plan() quality.SamplingPlan {
	return quality.SamplingPlan{
		Level:        quality.InspectionLevel(i.InspectionLevel),
		Range:        i.SamplingRange,
		SampleSize:   i.SampleSize,
		AcceptNumber: i.AcceptNumber,
		RejectNumber: i.RejectNumber,
		Fallback:     i.SamplingFallback,
	}
}

// ApplyMetrics 写回重算后的指标
func (i *Inspection) ApplyMetrics(m quality.QualityMetrics) {
	i.TotalGood = m.TotalGood
	i.TotalRejected = m.TotalRejected
	i.TotalProduced = m.TotalProduced
	i.QualityRate = m.QualityRate
	i.DefectRate = m.DefectRate
	i.FirstPassYield = m.FirstPassYield
}

// Defect 缺陷记录
type Defect struct {
	ID              string          `json:"id" gorm:"primaryKey;size:32"`
	WorkspaceID     string          `json:"workspace_id" gorm:"size:32;not null;index"`
	InspectionID    string          `json:"inspection_id" gorm:"size:32;not null;index"`
	ReasonCode      string          `json:"reason_code" gorm:"size:50;not null"`
	DisplayName     string          `json:"display_name" gorm:"size:100"`
	Severity        string          `json:"severity" gorm:"size:10"` // CRITICAL/MAJOR/MINOR
	Quantity        int             `json:"quantity" gorm:"not null"`
	CostAttribution string          `json:"cost_attribution" gorm:"size:10"` // SUPPLIER/STAFF/COMPANY/CLIENT
	CostImpact      decimal.Decimal `json:"cost_impact" gorm:"type:decimal(12,2)"`
	Location        string          `json:"location" gorm:"size:100"`
	Description     string          `json:"description" gorm:"type:text"`
	PhotoRef        string          `json:"photo_ref" gorm:"size:500"`
	CreatedBy       string          `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Defect) TableName() string {
	return "qc_defects"
}

// Record 转换为计算用记录
func (d *Defect) Record() quality.DefectRecord {
	return quality.DefectRecord{
		ID:              d.ID,
		ReasonCode:      d.ReasonCode,
		Quantity:        d.Quantity,
		CostAttribution: quality.CostAttribution(d.CostAttribution),
		CostImpact:      d.CostImpact,
		Location:        d.Location,
		Description:     d.Description,
		PhotoRef:        d.PhotoRef,
	}
}

// Apply 从计算记录回写字段，严重度按工艺目录解析
func (d *Defect) Apply(method quality.ProductionMethod, r quality.DefectRecord) {
	dt := quality.ClassifyDefect(method, r.ReasonCode)
	d.ID = r.ID
	d.ReasonCode = r.ReasonCode
	d.DisplayName = dt.DisplayName
	d.Severity = string(dt.Severity)
	d.Quantity = r.Quantity
	d.CostAttribution = string(r.CostAttribution)
	d.CostImpact = r.CostImpact
	d.Location = r.Location
	d.Description = r.Description
	d.PhotoRef = r.PhotoRef
}

// SequenceCounter 编号计数器，按工作区+类型+年度唯一
type SequenceCounter struct {
	WorkspaceID string    `json:"workspace_id" gorm:"primaryKey;size:32"`
	Scope       string    `json:"scope" gorm:"primaryKey;size:20"`
	Year        int       `json:"year" gorm:"primaryKey"`
	LastSeq     int       `json:"last_seq" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SequenceCounter) TableName() string {
	return "qc_sequence_counters"
}

// 计数器类型
const (
	CounterScopeInspection = "inspection"
	CounterScopeCAPA       = "capa"
)
