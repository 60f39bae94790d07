package repository

import (
	"context"
	"time"

	"okurmen-backend/internal/db"
	"okurmen-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetSettingsByLevel(ctx context.Context, level model.Level) (*model.TestSettings, error)
	ListSettings(ctx context.Context) ([]model.TestSettings, error)
	// UpsertSettings writes every entry in one transaction, creating rows
	// for levels that have none, and returns the stored rows in input order.
	UpsertSettings(ctx context.Context, entries []model.TestSettings) ([]model.TestSettings, error)
}

type settingsRepository struct {
	qe *db.QueryExecutor
}

func NewSettingsRepository(gdb *gorm.DB) SettingsRepository {
	return &settingsRepository{qe: db.NewQueryExecutor(gdb)}
}

func (r *settingsRepository) GetSettingsByLevel(ctx context.Context, level model.Level) (*model.TestSettings, error) {
	var s model.TestSettings
	if err := r.qe.DB.WithContext(ctx).Where("level = ?", level).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *settingsRepository) ListSettings(ctx context.Context) ([]model.TestSettings, error) {
	var rows []model.TestSettings
	err := r.qe.DB.WithContext(ctx).Order("level ASC").Find(&rows).Error
	return rows, translate(err)
}

func (r *settingsRepository) UpsertSettings(ctx context.Context, entries []model.TestSettings) ([]model.TestSettings, error) {
	stored := make([]model.TestSettings, 0, len(entries))
	err := r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		for _, e := range entries {
			row := model.TestSettings{Level: e.Level, TimeMinutes: e.TimeMinutes}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "level"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"time_minutes": e.TimeMinutes,
					"updated_at":   now,
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
			var saved model.TestSettings
			if err := tx.Where("level = ?", e.Level).First(&saved).Error; err != nil {
				return err
			}
			stored = append(stored, saved)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return stored, nil
}
