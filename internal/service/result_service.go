package service

import (
	"context"
	"time"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/google/uuid"
)

// Tombstone texts shown for answers whose question no longer exists.
const (
	MissingQuestionRU = "Вопрос не найден"
	MissingQuestionKG = "Суроо табылган жок"
)

type AnswerDetail struct {
	QuestionID     string `json:"question_id"`
	QuestionTextRU string `json:"question_text_ru"`
	QuestionTextKG string `json:"question_text_kg"`
	GivenAnswer    string `json:"given_answer"`
	CorrectAnswer  string `json:"correct_answer"`
}

// UserSummary identifies the taker of a result in admin views. Email
// mirrors the phone number for older admin clients.
type UserSummary struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type DetailedResult struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	Level          model.Level    `json:"level"`
	Score          int            `json:"score"`
	Percentage     int            `json:"percentage"`
	ColorLevel     model.Tier     `json:"color_level"`
	CompletedAt    time.Time      `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	TotalQuestions int64          `json:"total_questions"`
	Answers        []AnswerDetail `json:"answers"`
	User           *UserSummary   `json:"user,omitempty"`
}

type ResultService interface {
	// ResultsForUser returns the expanded results of userID, newest first.
	// Only the owner or an admin may read them.
	ResultsForUser(ctx context.Context, viewer model.Principal, userID uuid.UUID) ([]DetailedResult, error)
	// History returns every result expanded, with the taker attached.
	History(ctx context.Context) ([]DetailedResult, error)
	Expand(ctx context.Context, results []model.Result) ([]DetailedResult, error)
}

type resultService struct {
	results   repository.ResultRepository
	questions repository.QuestionRepository
	users     repository.UserRepository
}

func NewResultService(
	results repository.ResultRepository,
	questions repository.QuestionRepository,
	users repository.UserRepository,
) ResultService {
	return &resultService{results: results, questions: questions, users: users}
}

func (s *resultService) ResultsForUser(ctx context.Context, viewer model.Principal, userID uuid.UUID) ([]DetailedResult, error) {
	if !viewer.IsAdmin() && viewer.SubjectID != userID {
		return nil, ErrForbidden
	}
	results, err := s.results.GetResultsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list results", "Results", err)
	}
	return s.Expand(ctx, results)
}

func (s *resultService) History(ctx context.Context) ([]DetailedResult, error) {
	results, err := s.results.ListResults(ctx, 0)
	if err != nil {
		return nil, storeError("list results", "Results", err)
	}
	detailed, err := s.Expand(ctx, results)
	if err != nil {
		return nil, err
	}
	summaries, err := userSummaries(ctx, s.users, results)
	if err != nil {
		return nil, err
	}
	for i := range detailed {
		detailed[i].User = summaries[detailed[i].UserID]
	}
	return detailed, nil
}

// Expand resolves answers against the current question bank. Questions are
// looked up with one query for all results.
func (s *resultService) Expand(ctx context.Context, results []model.Result) ([]DetailedResult, error) {
	var ids []uuid.UUID
	for _, r := range results {
		for _, a := range r.Answers {
			if id, err := uuid.Parse(a.QuestionID); err == nil {
				ids = append(ids, id)
			}
		}
	}

	questions, err := s.questions.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("load questions", "Questions", err)
	}
	var activeCounts map[model.Level]int64
	if len(results) > 0 {
		if activeCounts, err = s.questions.CountActiveByLevel(ctx); err != nil {
			return nil, storeError("count questions", "Questions", err)
		}
	}

	out := make([]DetailedResult, 0, len(results))
	for _, r := range results {
		d := DetailedResult{
			ID:          r.ID,
			UserID:      r.UserID,
			Level:       r.Level,
			Score:       r.Score,
			Percentage:  r.Percentage,
			ColorLevel:  r.Tier,
			CompletedAt: r.CompletedAt,
			CreatedAt:   r.CreatedAt,
			Answers:     make([]AnswerDetail, 0, len(r.Answers)),
		}
		for _, a := range r.Answers {
			d.Answers = append(d.Answers, projectAnswer(a, questions))
		}
		d.TotalQuestions = int64(len(d.Answers))
		if d.TotalQuestions == 0 {
			d.TotalQuestions = activeCounts[r.Level]
		}
		out = append(out, d)
	}
	return out, nil
}

func projectAnswer(a model.AnswerRecord, questions map[uuid.UUID]model.Question) AnswerDetail {
	d := AnswerDetail{
		QuestionID:     a.QuestionID,
		QuestionTextRU: MissingQuestionRU,
		QuestionTextKG: MissingQuestionKG,
		GivenAnswer:    a.Answer,
		CorrectAnswer:  model.NoAnswer,
	}
	id, err := uuid.Parse(a.QuestionID)
	if err != nil {
		return d
	}
	if q, ok := questions[id]; ok {
		d.QuestionTextRU = q.QuestionRU
		d.QuestionTextKG = q.QuestionKG
		d.CorrectAnswer = q.CorrectAnswer
	}
	return d
}

func userSummaries(ctx context.Context, users repository.UserRepository, results []model.Result) (map[uuid.UUID]*UserSummary, error) {
	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.UserID)
	}
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("load users", "Users", err)
	}
	out := make(map[uuid.UUID]*UserSummary, len(found))
	for id, u := range found {
		out[id] = &UserSummary{FullName: u.FullName, PhoneNumber: u.PhoneNumber, Email: u.PhoneNumber}
	}
	return out, nil
}
