package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

const reportFontFamily = "report"

type ReportService interface {
	// RenderResults renders the expanded results of userID as a PDF, under
	// the same access rule as ResultService.ResultsForUser.
	RenderResults(ctx context.Context, viewer model.Principal, userID uuid.UUID) ([]byte, error)
}

type reportService struct {
	results  ResultService
	users    repository.UserRepository
	fontPath string
}

// NewReportService renders with the TTF font at fontPath when given.
// Without it the core Helvetica font is used and Cyrillic text is
// transliterated, since core fonts only carry WinAnsi glyphs.
func NewReportService(results ResultService, users repository.UserRepository, fontPath string) ReportService {
	return &reportService{results: results, users: users, fontPath: fontPath}
}

func (s *reportService) RenderResults(ctx context.Context, viewer model.Principal, userID uuid.UUID) ([]byte, error) {
	detailed, err := s.results.ResultsForUser(ctx, viewer, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError("load user", "User", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	family, tr := s.font(pdf)
	pdf.SetTitle("Test results", true)
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr(user.FullName))
	pdf.Ln(8)
	pdf.SetFont(family, "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf("%s, %d", user.PhoneNumber, user.Age)))
	pdf.Ln(12)

	if len(detailed) == 0 {
		pdf.Cell(0, 8, tr("No results"))
	}
	for _, r := range detailed {
		pdf.SetFont(family, "B", 13)
		pdf.Cell(0, 8, tr(fmt.Sprintf("%s: %d%% (%s)", r.Level, r.Percentage, r.ColorLevel)))
		pdf.Ln(7)
		pdf.SetFont(family, "", 10)
		pdf.Cell(0, 6, tr(fmt.Sprintf("%d / %d, %s", r.Score, r.TotalQuestions, r.CompletedAt.Format("2006-01-02 15:04"))))
		pdf.Ln(8)

		for i, a := range r.Answers {
			pdf.SetFont(family, "B", 10)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, a.QuestionTextRU)), "", "L", false)
			pdf.SetFont(family, "", 10)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s / %s", a.GivenAnswer, a.CorrectAnswer)), "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &AppError{Kind: KindInternal, Message: "Server error", Err: fmt.Errorf("render pdf: %w", err)}
	}
	return buf.Bytes(), nil
}

func (s *reportService) font(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if s.fontPath != "" {
		pdf.AddUTF8Font(reportFontFamily, "", s.fontPath)
		pdf.AddUTF8Font(reportFontFamily, "B", s.fontPath)
		if pdf.Ok() {
			return reportFontFamily, func(v string) string { return v }
		}
		pdf.ClearError()
	}
	winAnsi := pdf.UnicodeTranslatorFromDescriptor("cp1252")
	return "Helvetica", func(v string) string { return winAnsi(transliterate(v)) }
}

var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'ң': "ng", 'о': "o", 'ө': "o", 'п': "p", 'р': "r", 'с': "s",
	'т': "t", 'у': "u", 'ү': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya",
}

// transliterate spells Russian and Kyrgyz letters in Latin.
func transliterate(v string) string {
	var b strings.Builder
	for _, r := range v {
		lat, ok := cyrillicLatin[unicode.ToLower(r)]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if unicode.IsUpper(r) && lat != "" {
			lat = strings.ToUpper(lat[:1]) + lat[1:]
		}
		b.WriteString(lat)
	}
	return b.String()
}
