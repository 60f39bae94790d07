package service

import (
	"testing"

	"okurmen-backend/internal/model"
)

func TestGradeAnswers(t *testing.T) {
	q1 := logicQuestion(model.LevelA1, "a")
	q2 := logicQuestion(model.LevelA1, "b")
	q3 := logicQuestion(model.LevelA1, "c")
	mot := motivationalQuestion(model.LevelA1)
	reading := logicQuestion(model.LevelA1, model.NoAnswer)
	reading.Type = model.TypeReading
	questions := []model.Question{q1, q2, q3, mot, reading}

	tests := []struct {
		name    string
		answers []model.AnswerRecord
		correct int
		scored  int
	}{
		{
			name:    "two of three",
			answers: []model.AnswerRecord{answer(q1, "a"), answer(q2, "b"), answer(q3, "x")},
			correct: 2, scored: 3,
		},
		{
			name:    "motivational ignored",
			answers: []model.AnswerRecord{answer(mot, model.NoAnswer), answer(q1, "a")},
			correct: 1, scored: 1,
		},
		{
			name:    "unknown question ignored",
			answers: []model.AnswerRecord{{QuestionID: "missing", Answer: "a"}, answer(q1, "a")},
			correct: 1, scored: 1,
		},
		{
			name:    "repeated answer counts once",
			answers: []model.AnswerRecord{answer(q1, "x"), answer(q1, "a"), answer(q1, "a")},
			correct: 0, scored: 1,
		},
		{
			name:    "match is exact",
			answers: []model.AnswerRecord{answer(q1, "A"), answer(q2, " b")},
			correct: 0, scored: 2,
		},
		{
			name:    "reading without a key still scored",
			answers: []model.AnswerRecord{answer(reading, "a"), answer(q1, "a")},
			correct: 1, scored: 2,
		},
		{
			name: "no answers",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GradeAnswers(questions, tc.answers)
			if got.Correct != tc.correct || got.Scored != tc.scored {
				t.Fatalf("GradeAnswers = %+v, want correct=%d scored=%d", got, tc.correct, tc.scored)
			}
			if p := Percentage(got.Correct, got.Scored); p < 0 || p > 100 {
				t.Fatalf("percentage %d out of range", p)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, scored, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{1, 2, 50},
		{1, 8, 13},
		{3, 3, 100},
		{0, 5, 0},
		{0, 0, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.correct, tc.scored); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.correct, tc.scored, got, tc.want)
		}
	}
}
