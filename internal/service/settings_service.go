package service

import (
	"context"
	"fmt"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/hashicorp/go-multierror"
)

const (
	MinTimeMinutes = 1
	MaxTimeMinutes = 300
)

// SettingsUpdate is one entry of a bulk update. A nil TimeMinutes is
// reported as invalid.
type SettingsUpdate struct {
	Level       string `json:"level"`
	TimeMinutes *int   `json:"time_minutes"`
}

type SettingsService interface {
	ListSettings(ctx context.Context) ([]model.TestSettings, error)
	// UpdateSettings validates every entry before writing any of them.
	UpdateSettings(ctx context.Context, updates []SettingsUpdate) ([]model.TestSettings, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) ListSettings(ctx context.Context) ([]model.TestSettings, error) {
	rows, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, storeError("list settings", "Settings", err)
	}
	return rows, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, updates []SettingsUpdate) ([]model.TestSettings, error) {
	entries, err := validateSettings(updates)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []model.TestSettings{}, nil
	}
	stored, err := s.repo.UpsertSettings(ctx, entries)
	if err != nil {
		return nil, storeError("update settings", "Settings", err)
	}
	return stored, nil
}

func validateSettings(updates []SettingsUpdate) ([]model.TestSettings, error) {
	var result *multierror.Error
	entries := make([]model.TestSettings, 0, len(updates))
	for i, u := range updates {
		level, ok := model.ParseLevel(u.Level)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("entry %d: invalid level %q", i, u.Level))
			continue
		}
		if u.TimeMinutes == nil || *u.TimeMinutes < MinTimeMinutes || *u.TimeMinutes > MaxTimeMinutes {
			result = multierror.Append(result, fmt.Errorf(
				"invalid data for level %s: time_minutes must be a number between %d and %d",
				level, MinTimeMinutes, MaxTimeMinutes))
			continue
		}
		entries = append(entries, model.TestSettings{Level: level, TimeMinutes: *u.TimeMinutes})
	}
	if err := result.ErrorOrNil(); err != nil {
		result.ErrorFormat = joinErrors
		return nil, &AppError{Kind: KindValidation, Message: result.Error(), Err: err}
	}
	return entries, nil
}

func joinErrors(errs []error) string {
	msg := ""
	for i, err := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}
