package repository

import (
	"context"

	"okurmen-backend/internal/db"
	"okurmen-backend/internal/db/query"
	"okurmen-backend/internal/model"

	"gorm.io/gorm"
)

// Totals are the aggregate figures of the admin dashboard.
type Totals struct {
	Users     int64
	Questions int64 // active only
	Tests     int64
	AvgScore  float64
	ByTier    map[model.Tier]int64
}

type StatsRepository interface {
	GetTotals(ctx context.Context) (*Totals, error)
}

type statsRepository struct {
	qe *db.QueryExecutor
}

func NewStatsRepository(gdb *gorm.DB) StatsRepository {
	return &statsRepository{qe: db.NewQueryExecutor(gdb)}
}

func (r *statsRepository) GetTotals(ctx context.Context) (*Totals, error) {
	var (
		t   = Totals{ByTier: map[model.Tier]int64{}}
		err error
	)
	if t.Users, err = r.qe.Count(ctx, &model.User{}, nil); err != nil {
		return nil, translate(err)
	}
	if t.Questions, err = r.qe.Count(ctx, &model.Question{}, query.NewFilter().Equal("is_active", true)); err != nil {
		return nil, translate(err)
	}
	if t.Tests, err = r.qe.Count(ctx, &model.Result{}, nil); err != nil {
		return nil, translate(err)
	}
	if t.AvgScore, err = r.qe.Average(ctx, &model.Result{}, "percentage",
		query.NewFilter().GreaterThan("percentage", 0)); err != nil {
		return nil, translate(err)
	}
	groups, err := r.qe.CountBy(ctx, &model.Result{}, "color_level", nil)
	if err != nil {
		return nil, translate(err)
	}
	for _, g := range groups {
		t.ByTier[model.Tier(g.GroupKey)] = g.Count
	}
	return &t, nil
}
