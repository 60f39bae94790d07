package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"okurmen-backend/internal/model"

	"github.com/google/uuid"
)

func TestAssembleQuestionsHidesCorrectAnswer(t *testing.T) {
	q := logicQuestion(model.LevelB1, "secret-answer")
	svc := NewTestService(newFakeQuestions(q), newFakeSettings(nil), nil, false)

	set, err := svc.AssembleQuestions(context.Background(), AssembleRequest{Level: "B1"})
	if err != nil {
		t.Fatalf("AssembleQuestions: %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "correct_answer") || strings.Contains(string(body), "secret-answer") {
		t.Fatalf("delivered payload leaks the answer: %s", body)
	}
}

func TestAssembleQuestionsLanguageAndDefaults(t *testing.T) {
	active := logicQuestion(model.LevelA2, "a")
	inactive := logicQuestion(model.LevelA2, "b")
	inactive.IsActive = false
	mot := motivationalQuestion(model.LevelA2)
	mot.OptionsRU, mot.OptionsKG = nil, nil
	other := logicQuestion(model.LevelB2, "c")

	svc := NewTestService(newFakeQuestions(active, inactive, mot, other), newFakeSettings(nil), nil, false)

	set, err := svc.AssembleQuestions(context.Background(), AssembleRequest{Level: "A2", Language: "kg"})
	if err != nil {
		t.Fatalf("AssembleQuestions: %v", err)
	}
	if set.TimeMinutes != DefaultTimeMinutes {
		t.Errorf("timeMinutes = %d, want %d", set.TimeMinutes, DefaultTimeMinutes)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("got %d questions, want 2 active A2 questions", len(set.Questions))
	}
	first := set.Questions[0]
	if first.Question != active.QuestionKG || first.Options[0] != "а" {
		t.Errorf("kg delivery = %+v", first)
	}
	if set.Questions[1].Options == nil {
		t.Error("options must be an empty list, not null")
	}
	if first.ImageURL != nil {
		t.Errorf("image_url = %v, want nil", *first.ImageURL)
	}

	ru, err := svc.AssembleQuestions(context.Background(), AssembleRequest{Level: "A2", Language: "xx"})
	if err != nil {
		t.Fatal(err)
	}
	if ru.Questions[0].Question != active.QuestionRU {
		t.Errorf("unknown language should fall back to ru, got %q", ru.Questions[0].Question)
	}
}

func TestAssembleQuestionsImageURL(t *testing.T) {
	q := logicQuestion(model.LevelA1, "a")
	q.ImageFilename = "chart.png"
	svc := NewTestService(newFakeQuestions(q), newFakeSettings(map[model.Level]int{model.LevelA1: 15}), nil, false)

	set, err := svc.AssembleQuestions(context.Background(), AssembleRequest{Level: "A1"})
	if err != nil {
		t.Fatal(err)
	}
	if set.TimeMinutes != 15 {
		t.Errorf("timeMinutes = %d, want 15", set.TimeMinutes)
	}
	got := set.Questions[0]
	if got.ImageURL == nil || *got.ImageURL != "/api/questions/"+q.ID.String()+"/image" {
		t.Fatalf("image_url = %v", got.ImageURL)
	}
	if got.ImageFilename != "chart.png" {
		t.Errorf("image_filename = %q", got.ImageFilename)
	}
}

func TestAssembleQuestionsInvalidLevel(t *testing.T) {
	svc := NewTestService(newFakeQuestions(), newFakeSettings(nil), nil, false)
	_, err := svc.AssembleQuestions(context.Background(), AssembleRequest{Level: "Z1"})
	if KindOf(err) != KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestAssembleQuestionsRecordsSessionOnce(t *testing.T) {
	sessions := newFakeSessions()
	svc := NewTestService(newFakeQuestions(logicQuestion(model.LevelA1, "a")), newFakeSettings(nil), sessions, true).(*testService)
	first := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	user := uuid.New()
	req := AssembleRequest{UserID: user, Level: "A1"}
	if _, err := svc.AssembleQuestions(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return first.Add(10 * time.Minute) }
	if _, err := svc.AssembleQuestions(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	s, err := sessions.GetSession(context.Background(), user, model.LevelA1)
	if err != nil {
		t.Fatalf("session not recorded: %v", err)
	}
	if !s.StartedAt.Equal(first) {
		t.Errorf("started_at = %v, want the first fetch %v", s.StartedAt, first)
	}
}

func TestPublicSettings(t *testing.T) {
	inactive := logicQuestion(model.LevelA1, "c")
	inactive.IsActive = false
	questions := newFakeQuestions(logicQuestion(model.LevelA1, "a"), logicQuestion(model.LevelA1, "b"), inactive)
	settings := newFakeSettings(map[model.Level]int{model.LevelA1: 25, model.LevelC2: 40})
	svc := NewTestService(questions, settings, nil, false)

	got, err := svc.PublicSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[model.LevelA1] != (LevelSummary{Questions: 2, Time: 25}) {
		t.Errorf("A1 = %+v", got[model.LevelA1])
	}
	if got[model.LevelC2] != (LevelSummary{Questions: 0, Time: 40}) {
		t.Errorf("C2 = %+v", got[model.LevelC2])
	}
	if _, ok := got[model.LevelB1]; ok {
		t.Error("unconfigured level listed")
	}
}
