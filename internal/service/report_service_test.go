package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"okurmen-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

func newReportFixture(fontPath string) (ReportService, model.User) {
	user := model.User{ID: uuid.New(), FullName: "Айбек Үсөнов", PhoneNumber: "+996700000001", Age: 17}
	q := logicQuestion(model.LevelA1, "b")
	results := &fakeResults{rows: []model.Result{{
		ID:          uuid.New(),
		UserID:      user.ID,
		Level:       model.LevelA1,
		Score:       1,
		Percentage:  100,
		Tier:        model.TierHigh,
		Answers:     []model.AnswerRecord{answer(q, "b")},
		CompletedAt: time.Now(),
	}}}
	users := newFakeUsers(user)
	resultSvc := NewResultService(results, newFakeQuestions(q), users)
	return NewReportService(resultSvc, users, fontPath), user
}

func TestRenderResults(t *testing.T) {
	tests := []struct {
		name     string
		fontPath string
	}{
		{"core font", ""},
		{"missing font file falls back", "/nonexistent/font.ttf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, user := newReportFixture(tc.fontPath)
			owner := model.Principal{SubjectID: user.ID, Role: model.RoleUser}

			pdf, err := svc.RenderResults(context.Background(), owner, user.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(pdf, []byte("%PDF")) {
				t.Fatalf("output does not start with %%PDF: %q", pdf[:min(len(pdf), 16)])
			}
		})
	}
}

func TestRenderResultsAccess(t *testing.T) {
	svc, user := newReportFixture("")

	stranger := model.Principal{SubjectID: uuid.New(), Role: model.RoleUser}
	if _, err := svc.RenderResults(context.Background(), stranger, user.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger err = %v, want ErrForbidden", err)
	}
	admin := model.Principal{SubjectID: uuid.New(), Role: model.RoleAdmin}
	if _, err := svc.RenderResults(context.Background(), admin, user.ID); err != nil {
		t.Fatalf("admin err = %v", err)
	}
}

func TestCoreFontTransliterates(t *testing.T) {
	s := &reportService{}
	pdf := gofpdf.New("P", "mm", "A4", "")
	family, tr := s.font(pdf)
	if family != "Helvetica" {
		t.Fatalf("family = %q, want Helvetica", family)
	}

	tests := map[string]string{
		"Вопрос не найден":   "Vopros ne nayden",
		"Суроо табылган жок": "Suroo tabylgan zhok",
		"Эмне үчүн?":         "Emne uchun?",
		"Ңөү":                "Ngou",
		"A1: 50% (medium)":   "A1: 50% (medium)",
	}
	for in, want := range tests {
		if got := tr(in); got != want {
			t.Errorf("tr(%q) = %q, want %q", in, got, want)
		}
	}
	if err := pdf.Error(); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
}
