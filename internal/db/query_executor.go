package db

import (
	"context"
	"database/sql"

	"okurmen-backend/internal/db/query"

	"gorm.io/gorm"
)

// QueryExecutor handles the aggregate queries shared by repositories.
type QueryExecutor struct {
	DB *gorm.DB
}

// NewQueryExecutor creates a new instance of QueryExecutor.
func NewQueryExecutor(db *gorm.DB) *QueryExecutor {
	return &QueryExecutor{DB: db}
}

// Count returns the number of rows of the model's table matching the filter.
// A nil filter counts every row.
func (qe *QueryExecutor) Count(ctx context.Context, model interface{}, filter *query.Filter) (int64, error) {
	var count int64
	tx := qe.DB.WithContext(ctx).Model(model)
	if filter != nil {
		tx = filter.Apply(tx)
	}
	err := tx.Count(&count).Error
	return count, err
}

// Exists checks if a row of the model's table matches the filter.
func (qe *QueryExecutor) Exists(ctx context.Context, model interface{}, filter *query.Filter) (bool, error) {
	var hit []int
	tx := qe.DB.WithContext(ctx).Model(model).Select("1")
	if filter != nil {
		tx = filter.Apply(tx)
	}
	if err := tx.Limit(1).Scan(&hit).Error; err != nil {
		return false, err
	}
	return len(hit) > 0, nil
}

// Average returns AVG(column) over the rows matching the filter, or 0 when
// none match.
func (qe *QueryExecutor) Average(ctx context.Context, model interface{}, column string, filter *query.Filter) (float64, error) {
	var avg sql.NullFloat64
	tx := qe.DB.WithContext(ctx).Model(model).Select("AVG(" + column + ")")
	if filter != nil {
		tx = filter.Apply(tx)
	}
	err := tx.Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// GroupCount is one row of a COUNT(*) GROUP BY query.
type GroupCount struct {
	GroupKey string
	Count    int64
}

// CountBy groups the rows matching the filter by column and counts each group.
func (qe *QueryExecutor) CountBy(ctx context.Context, model interface{}, column string, filter *query.Filter) ([]GroupCount, error) {
	var rows []GroupCount
	tx := qe.DB.WithContext(ctx).Model(model).Select(column + " AS group_key, COUNT(*) AS count")
	if filter != nil {
		tx = filter.Apply(tx)
	}
	err := tx.Group(column).Scan(&rows).Error
	return rows, err
}

// Transaction executes a set of operations within a database transaction.
func (qe *QueryExecutor) Transaction(ctx context.Context, txFunc func(tx *gorm.DB) error) error {
	return qe.DB.WithContext(ctx).Transaction(txFunc)
}
