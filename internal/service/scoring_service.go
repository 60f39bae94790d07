package service

import (
	"context"
	"errors"
	"time"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"
	"okurmen-backend/utilities"

	"github.com/google/uuid"
)

type SubmitRequest struct {
	UserID  uuid.UUID
	Level   string
	Answers []model.AnswerRecord
	// StartTime is the client's start of the attempt in Unix milliseconds.
	StartTime int64
}

type ScoreReport struct {
	Score          int        `json:"score"`
	Percentage     int        `json:"percentage"`
	ColorLevel     model.Tier `json:"colorLevel"`
	TotalQuestions int        `json:"totalQuestions"`
	CorrectAnswers int        `json:"correctAnswers"`
	TestTime       int        `json:"testTime"`
}

type ScoringService interface {
	Submit(ctx context.Context, req SubmitRequest) (*ScoreReport, error)
}

type scoringService struct {
	questions    repository.QuestionRepository
	settings     repository.SettingsRepository
	results      repository.ResultRepository
	sessions     repository.SessionRepository
	bus          *utilities.EventBus
	strictTiming bool
	now          func() time.Time
}

func NewScoringService(
	questions repository.QuestionRepository,
	settings repository.SettingsRepository,
	results repository.ResultRepository,
	sessions repository.SessionRepository,
	bus *utilities.EventBus,
	strictTiming bool,
) ScoringService {
	return &scoringService{
		questions:    questions,
		settings:     settings,
		results:      results,
		sessions:     sessions,
		bus:          bus,
		strictTiming: strictTiming,
		now:          time.Now,
	}
}

func (s *scoringService) Submit(ctx context.Context, req SubmitRequest) (*ScoreReport, error) {
	level, ok := model.ParseLevel(req.Level)
	if !ok {
		return nil, Validation("Invalid level: %s", req.Level)
	}
	if req.UserID == uuid.Nil {
		return nil, Validation("User is required")
	}

	testTime, err := timeMinutesFor(ctx, s.settings, level)
	if err != nil {
		return nil, err
	}

	start, err := s.startOf(ctx, req, level)
	if err != nil {
		return nil, err
	}
	now := s.now()
	elapsed := float64(now.UnixMilli()-start) / 60000
	if elapsed > float64(testTime) {
		return nil, ErrTimeExpired
	}

	existing, err := s.results.GetResultByUserAndLevel(ctx, req.UserID, level)
	switch {
	case err == nil && existing != nil:
		return nil, ErrAlreadySubmitted
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, storeError("check result", "Result", err)
	}

	questions, err := s.questions.GetActiveQuestionsByLevel(ctx, level)
	if err != nil {
		return nil, storeError("load questions", "Questions", err)
	}

	grade := GradeAnswers(questions, req.Answers)
	percentage := Percentage(grade.Correct, grade.Scored)
	tier := model.TierFor(percentage)

	answers := req.Answers
	if answers == nil {
		answers = []model.AnswerRecord{}
	}
	result := &model.Result{
		UserID:      req.UserID,
		Level:       level,
		Score:       grade.Correct,
		Percentage:  percentage,
		Tier:        tier,
		Answers:     answers,
		CompletedAt: now,
	}
	// The existence check above is repeated inside the insert transaction and
	// backed by the (user_id, level) unique index.
	if err := s.results.CreateResultOnce(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, storeError("create result", "Result", err)
	}

	if s.bus != nil {
		s.bus.Publish(utilities.EventResultCreated, *result)
	}

	return &ScoreReport{
		Score:          grade.Correct,
		Percentage:     percentage,
		ColorLevel:     tier,
		TotalQuestions: len(questions),
		CorrectAnswers: grade.Correct,
		TestTime:       testTime,
	}, nil
}

// startOf returns the attempt start in Unix milliseconds: the recorded
// session start under strict timing, otherwise the client's value.
func (s *scoringService) startOf(ctx context.Context, req SubmitRequest, level model.Level) (int64, error) {
	if s.strictTiming && s.sessions != nil {
		session, err := s.sessions.GetSession(ctx, req.UserID, level)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, ErrNoSession
			}
			return 0, storeError("load session", "Session", err)
		}
		return session.StartedAt.UnixMilli(), nil
	}
	if req.StartTime <= 0 {
		return 0, Validation("startTime is required")
	}
	return req.StartTime, nil
}
