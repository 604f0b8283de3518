package entity

import (
	"time"

	"gorm.io/datatypes"
)

// CAPATask 纠正预防措施
type CAPATask struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	WorkspaceID  string `json:"workspace_id" gorm:"size:32;not null;uniqueIndex:idx_qc_capa_number"`
	CAPANumber   string `json:"capa_number" gorm:"size:32;not null;uniqueIndex:idx_qc_capa_number"`
	InspectionID string `json:"inspection_id" gorm:"size:32;index"`

	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	Type        string `json:"type" gorm:"size:20"`     // CORRECTIVE/PREVENTIVE
	Priority    string `json:"priority" gorm:"size:20"` // LOW/MEDIUM/HIGH/CRITICAL
	Source      string `json:"source" gorm:"size:20"`   // MANUAL/INSPECTION

	RootCause        string         `json:"root_cause" gorm:"type:text"`
	CorrectiveAction string         `json:"corrective_action" gorm:"type:text"`
	PreventiveAction string         `json:"preventive_action" gorm:"type:text"`
	Suggestions      datatypes.JSON `json:"suggestions"`

	Status        string     `json:"status" gorm:"size:20;default:open"` // open/in_progress/closed
	ProgressNotes string     `json:"progress_notes" gorm:"type:text"`
	AssignedTo    string     `json:"assigned_to" gorm:"size:32"`
	DueDate       *time.Time `json:"due_date"`
	ClosedAt      *time.Time `json:"closed_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CAPATask) TableName() string {
	return "qc_capa_tasks"
}

// CAPA状态
const (
	CAPAStatusOpen       = "open"
	CAPAStatusInProgress = "in_progress"
	CAPAStatusClosed     = "closed"
)

// ValidCAPATransitions 合法的CAPA状态流转
var ValidCAPATransitions = map[string][]string{
	CAPAStatusOpen:       {CAPAStatusInProgress, CAPAStatusClosed},
	CAPAStatusInProgress: {CAPAStatusClosed},
}

// CAPA类型/来源/优先级
const (
	CAPATypeCorrective = "CORRECTIVE"
	CAPATypePreventive = "PREVENTIVE"

	CAPASourceManual     = "MANUAL"
	CAPASourceInspection = "INSPECTION"

	CAPAPriorityLow      = "LOW"
	CAPAPriorityMedium   = "MEDIUM"
	CAPAPriorityHigh     = "HIGH"
	CAPAPriorityCritical = "CRITICAL"
)

// ValidCAPAPriority 优先级是否合法
func ValidCAPAPriority(p string) bool {
	switch p {
	case CAPAPriorityLow, CAPAPriorityMedium, CAPAPriorityHigh, CAPAPriorityCritical:
		return true
	}
	return false
}
