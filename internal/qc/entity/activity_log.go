package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog 质检操作日志
type ActivityLog struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkspaceID string `json:"workspace_id" gorm:"size:32;index"`
	EntityType  string `json:"entity_type" gorm:"size:50;not null;index:idx_qc_activity_entity"` // qc_inspection/capa
	EntityID    string `json:"entity_id" gorm:"size:32;not null;index:idx_qc_activity_entity"`
	EntityCode  string `json:"entity_code" gorm:"size:50"`

	Action     string `json:"action" gorm:"size:50;not null"` // create/add_defect/update_defect/remove_defect/complete等
	FromStatus string `json:"from_status" gorm:"size:20"`
	ToStatus   string `json:"to_status" gorm:"size:20"`

	Content  string         `json:"content" gorm:"type:text"`
	Metadata datatypes.JSON `json:"metadata"`

	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "qc_activity_logs"
}

// 日志实体类型
const (
	EntityTypeInspection = "qc_inspection"
	EntityTypeCAPA       = "qc_capa"
)
