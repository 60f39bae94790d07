package repository

import (
	"context"

	"okurmen-backend/internal/db"
	"okurmen-backend/internal/db/query"
	"okurmen-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResultRepository interface {
	// CreateResultOnce stores res unless the user already has a result for
	// the same level, in which case it returns ErrDuplicate.
	CreateResultOnce(ctx context.Context, res *model.Result) error
	GetResultsByUser(ctx context.Context, userID uuid.UUID) ([]model.Result, error)
	GetResultByUserAndLevel(ctx context.Context, userID uuid.UUID, level model.Level) (*model.Result, error)
	// ListResults returns results newest first; limit <= 0 returns all.
	ListResults(ctx context.Context, limit int) ([]model.Result, error)
}

type resultRepository struct {
	qe *db.QueryExecutor
}

func NewResultRepository(gdb *gorm.DB) ResultRepository {
	return &resultRepository{qe: db.NewQueryExecutor(gdb)}
}

func (r *resultRepository) CreateResultOnce(ctx context.Context, res *model.Result) error {
	err := r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		exists, err := db.NewQueryExecutor(tx).Exists(ctx, &model.Result{},
			query.NewFilter().Equal("user_id", res.UserID).Equal("level", res.Level))
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}
		return tx.Create(res).Error
	})
	return translate(err)
}

func (r *resultRepository) GetResultsByUser(ctx context.Context, userID uuid.UUID) ([]model.Result, error) {
	var results []model.Result
	err := r.qe.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&results).Error
	return results, translate(err)
}

func (r *resultRepository) GetResultByUserAndLevel(ctx context.Context, userID uuid.UUID, level model.Level) (*model.Result, error) {
	var res model.Result
	err := r.qe.DB.WithContext(ctx).
		Where("user_id = ? AND level = ?", userID, level).
		First(&res).Error
	if err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *resultRepository) ListResults(ctx context.Context, limit int) ([]model.Result, error) {
	var results []model.Result
	tx := r.qe.DB.WithContext(ctx).Order("completed_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	err := tx.Find(&results).Error
	return results, translate(err)
}
