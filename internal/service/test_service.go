package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/google/uuid"
)

// DefaultTimeMinutes applies to levels without a settings row.
const DefaultTimeMinutes = 20

// DeliveredQuestion is a question as a test taker receives it. It has no
// field for the correct answer.
type DeliveredQuestion struct {
	ID            uuid.UUID          `json:"id"`
	Level         model.Level        `json:"level"`
	Type          model.QuestionType `json:"type"`
	Question      string             `json:"question"`
	Options       []string           `json:"options"`
	ImageURL      *string            `json:"image_url"`
	ImageFilename string             `json:"image_filename,omitempty"`
}

type QuestionSet struct {
	Questions   []DeliveredQuestion `json:"questions"`
	TimeMinutes int                 `json:"timeMinutes"`
}

// LevelSummary is the public view of one configured level.
type LevelSummary struct {
	Questions int64 `json:"questions"`
	Time      int   `json:"time"`
}

type AssembleRequest struct {
	UserID   uuid.UUID
	Level    string
	Language string
	Shuffle  bool
}

type TestService interface {
	AssembleQuestions(ctx context.Context, req AssembleRequest) (*QuestionSet, error)
	PublicSettings(ctx context.Context) (map[model.Level]LevelSummary, error)
}

type testService struct {
	questions    repository.QuestionRepository
	settings     repository.SettingsRepository
	sessions     repository.SessionRepository
	strictTiming bool
	now          func() time.Time
}

// NewTestService builds the question delivery service. sessions may be nil
// when strictTiming is off.
func NewTestService(
	questions repository.QuestionRepository,
	settings repository.SettingsRepository,
	sessions repository.SessionRepository,
	strictTiming bool,
) TestService {
	return &testService{
		questions:    questions,
		settings:     settings,
		sessions:     sessions,
		strictTiming: strictTiming,
		now:          time.Now,
	}
}

func (s *testService) AssembleQuestions(ctx context.Context, req AssembleRequest) (*QuestionSet, error) {
	level, ok := model.ParseLevel(req.Level)
	if !ok {
		return nil, Validation("Invalid level: %s", req.Level)
	}
	lang := model.ParseLanguage(req.Language)

	minutes, err := timeMinutesFor(ctx, s.settings, level)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.GetActiveQuestionsByLevel(ctx, level)
	if err != nil {
		return nil, storeError("load questions", "Questions", err)
	}

	set := &QuestionSet{
		Questions:   make([]DeliveredQuestion, 0, len(questions)),
		TimeMinutes: minutes,
	}
	for i := range questions {
		set.Questions = append(set.Questions, deliver(&questions[i], lang))
	}
	if req.Shuffle {
		rand.Shuffle(len(set.Questions), func(i, j int) {
			set.Questions[i], set.Questions[j] = set.Questions[j], set.Questions[i]
		})
	}

	if s.strictTiming && s.sessions != nil && req.UserID != uuid.Nil {
		if _, err := s.sessions.StartSession(ctx, req.UserID, level, s.now()); err != nil {
			return nil, storeError("start session", "Session", err)
		}
	}
	return set, nil
}

// PublicSettings lists configured levels with their active question count.
func (s *testService) PublicSettings(ctx context.Context) (map[model.Level]LevelSummary, error) {
	rows, err := s.settings.ListSettings(ctx)
	if err != nil {
		return nil, storeError("list settings", "Settings", err)
	}
	counts, err := s.questions.CountActiveByLevel(ctx)
	if err != nil {
		return nil, storeError("count questions", "Questions", err)
	}

	out := make(map[model.Level]LevelSummary, len(rows))
	for _, row := range rows {
		out[row.Level] = LevelSummary{Questions: counts[row.Level], Time: row.TimeMinutes}
	}
	return out, nil
}

func deliver(q *model.Question, lang model.Language) DeliveredQuestion {
	options := q.Options(lang)
	if options == nil {
		options = []string{}
	}
	d := DeliveredQuestion{
		ID:       q.ID,
		Level:    q.Level,
		Type:     q.Type,
		Question: q.Text(lang),
		Options:  options,
	}
	if q.HasImage() {
		url := ImageURL(q.ID)
		d.ImageURL = &url
		d.ImageFilename = q.ImageFilename
	}
	return d
}

// ImageURL is the public path of a question's image.
func ImageURL(id uuid.UUID) string {
	return fmt.Sprintf("/api/questions/%s/image", id)
}

func timeMinutesFor(ctx context.Context, settings repository.SettingsRepository, level model.Level) (int, error) {
	row, err := settings.GetSettingsByLevel(ctx, level)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return DefaultTimeMinutes, nil
	case err != nil:
		return 0, storeError("load settings", "Settings", err)
	case row.TimeMinutes <= 0:
		return DefaultTimeMinutes, nil
	}
	return row.TimeMinutes, nil
}
