package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 质检仓库集合
type Repositories struct {
	Inspection  *InspectionRepository
	Defect      *DefectRepository
	Sequence    *SequenceRepository
	CAPA        *CAPARepository
	ActivityLog *ActivityLogRepository
	Analytics   *AnalyticsRepository
}

// NewRepositories 创建质检仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Inspection:  NewInspectionRepository(db),
		Defect:      NewDefectRepository(db),
		Sequence:    NewSequenceRepository(db),
		CAPA:        NewCAPARepository(db),
		ActivityLog: NewActivityLogRepository(db),
		Analytics:   NewAnalyticsRepository(db),
	}
}

// forUpdate 行锁，sqlite 不支持 FOR UPDATE，整库写锁已足够
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
