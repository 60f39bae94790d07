package service

import (
	"okurmen-backend/internal/model"
)

// Grade is the outcome of matching answers against a question set.
type Grade struct {
	Correct int
	Scored  int
}

// GradeAnswers counts scored and correct answers. Answers naming an unknown
// question are ignored, and so are repeated answers to a question already
// graded. Motivational questions never count.
func GradeAnswers(questions []model.Question, answers []model.AnswerRecord) Grade {
	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID.String()] = &questions[i]
	}

	var g Grade
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		if !q.Type.Scored() {
			continue
		}
		g.Scored++
		if a.Answer == q.CorrectAnswer {
			g.Correct++
		}
	}
	return g
}

// Percentage is 100*correct/scored rounded half up, or 0 when nothing was
// scored.
func Percentage(correct, scored int) int {
	if scored <= 0 {
		return 0
	}
	return (200*correct + scored) / (2 * scored)
}
