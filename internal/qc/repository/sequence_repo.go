package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository 编号计数器仓库
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

func (r *SequenceRepository) WithTx(tx *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: tx}
}

// SeedFunc 计数器首次使用时返回已发出的最大序号
type SeedFunc func(ctx context.Context, tx *gorm.DB) (int, error)

// Next 原子递增并返回 (workspace, scope, year) 的下一个序号
func (r *SequenceRepository) Next(ctx context.Context, workspaceID, scope string, year int, seed SeedFunc) (int, error) {
	var seq int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.SequenceCounter
		err := tx.Where("workspace_id = ? AND scope = ? AND year = ?", workspaceID, scope, year).
			Take(&current).Error
		issued := 0
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if seed != nil {
				if issued, err = seed(ctx, tx); err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		now := time.Now().UTC()
		counter := entity.SequenceCounter{
			WorkspaceID: workspaceID,
			Scope:       scope,
			Year:        year,
			LastSeq:     issued + 1,
			UpdatedAt:   now,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "workspace_id"}, {Name: "scope"}, {Name: "year"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_seq":   gorm.Expr(entity.SequenceCounter{}.TableName() + ".last_seq + 1"),
				"updated_at": now,
			}),
		}).Create(&counter).Error
		if err != nil {
			return err
		}

		var updated entity.SequenceCounter
		if err := tx.Where("workspace_id = ? AND scope = ? AND year = ?", workspaceID, scope, year).
			Take(&updated).Error; err != nil {
			return err
		}
		seq = updated.LastSeq
		return nil
	})
	return seq, err
}
