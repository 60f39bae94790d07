package repository

import (
	"context"
	"time"

	"okurmen-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	// StartSession records startedAt for (user, level) unless a session is
	// already recorded, and returns the stored session either way.
	StartSession(ctx context.Context, userID uuid.UUID, level model.Level, startedAt time.Time) (*model.TestSession, error)
	GetSession(ctx context.Context, userID uuid.UUID, level model.Level) (*model.TestSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) StartSession(ctx context.Context, userID uuid.UUID, level model.Level, startedAt time.Time) (*model.TestSession, error) {
	row := model.TestSession{UserID: userID, Level: level, StartedAt: startedAt}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "level"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.GetSession(ctx, userID, level)
}

func (r *sessionRepository) GetSession(ctx context.Context, userID uuid.UUID, level model.Level) (*model.TestSession, error) {
	var s model.TestSession
	err := r.db.WithContext(ctx).Where("user_id = ? AND level = ?", userID, level).First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
