package service

import (
	"context"
	"path/filepath"
	"strings"

	"okurmen-backend/internal/db/query"
	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxImageBytes bounds uploaded question images.
const DefaultMaxImageBytes = 5 * 1024 * 1024

// ImageUpload is an uploaded file as received by the transport.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// QuestionInput carries the admin form. Empty strings and nil slices mean
// "not provided"; on update they keep the stored value.
type QuestionInput struct {
	Level         string
	Type          string
	QuestionRU    string
	QuestionKG    string
	OptionsRU     []string
	OptionsKG     []string
	CorrectAnswer string
	IsActive      *bool
	Image         *ImageUpload
}

type QuestionFilter struct {
	Level  string
	Type   string
	Active *bool
	Search string
}

// Image is a stored question image ready to be served.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type QuestionService interface {
	ListQuestions(ctx context.Context, f QuestionFilter) ([]model.Question, error)
	CreateQuestion(ctx context.Context, in QuestionInput) (*model.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, in QuestionInput) (*model.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	GetImage(ctx context.Context, id uuid.UUID) (*Image, error)
}

type questionService struct {
	repo          repository.QuestionRepository
	maxImageBytes int64
}

func NewQuestionService(repo repository.QuestionRepository, maxImageBytes int64) QuestionService {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &questionService{repo: repo, maxImageBytes: maxImageBytes}
}

func (s *questionService) ListQuestions(ctx context.Context, f QuestionFilter) ([]model.Question, error) {
	filter := query.NewFilter()
	if f.Level != "" {
		level, ok := model.ParseLevel(f.Level)
		if !ok {
			return nil, Validation("Invalid level: %s", f.Level)
		}
		filter.Equal("level", level)
	}
	if f.Type != "" {
		t := model.QuestionType(f.Type)
		if !t.Valid() {
			return nil, Validation("Invalid type: %s", f.Type)
		}
		filter.Equal("type", t)
	}
	if f.Active != nil {
		filter.Equal("is_active", *f.Active)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		filter.AnyLike(search, "question_ru", "question_kg")
	}

	questions, err := s.repo.ListQuestions(ctx, filter)
	if err != nil {
		return nil, storeError("list questions", "Questions", err)
	}
	return questions, nil
}

func (s *questionService) CreateQuestion(ctx context.Context, in QuestionInput) (*model.Question, error) {
	q := &model.Question{IsActive: true}
	if err := s.apply(q, in, true); err != nil {
		return nil, err
	}
	if in.Image != nil {
		if err := s.checkImage(in.Image); err != nil {
			return nil, err
		}
		q.ImageFile = in.Image.Data
		q.ImageFilename = imageFilename(in.Image.Filename)
	}

	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		return nil, storeError("create question", "Question", err)
	}
	return q, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id uuid.UUID, in QuestionInput) (*model.Question, error) {
	q, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, storeError("load question", "Question", err)
	}
	if err := s.apply(q, in, false); err != nil {
		return nil, err
	}
	if in.Image != nil {
		if err := s.checkImage(in.Image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		return nil, storeError("update question", "Question", err)
	}
	if in.Image != nil {
		name := imageFilename(in.Image.Filename)
		if err := s.repo.SetQuestionImage(ctx, id, name, in.Image.Data); err != nil {
			return nil, storeError("store image", "Question", err)
		}
		q.ImageFilename = name
	}
	return q, nil
}

// DeleteQuestion removes the row. Results that reference it render the
// tombstone text afterwards.
func (s *questionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return storeError("delete question", "Question", err)
	}
	return nil
}

func (s *questionService) GetImage(ctx context.Context, id uuid.UUID) (*Image, error) {
	q, err := s.repo.GetQuestionImage(ctx, id)
	if err != nil {
		return nil, storeError("load image", "Question", err)
	}
	if len(q.ImageFile) == 0 {
		return nil, NotFound("Image")
	}
	return &Image{
		Filename:    q.ImageFilename,
		ContentType: ContentTypeFor(q.ImageFilename),
		Data:        q.ImageFile,
	}, nil
}

// apply merges in into q and validates the result. On create every field is
// required; on update missing fields keep their stored value.
func (s *questionService) apply(q *model.Question, in QuestionInput, create bool) error {
	if in.Level != "" || create {
		level, ok := model.ParseLevel(in.Level)
		if !ok {
			return Validation("Invalid level: %s", in.Level)
		}
		q.Level = level
	}
	if in.Type != "" || create {
		t := model.QuestionType(in.Type)
		if !t.Valid() {
			return Validation("Invalid type: %s", in.Type)
		}
		q.Type = t
	}
	if v := strings.TrimSpace(in.QuestionRU); v != "" {
		q.QuestionRU = v
	}
	if v := strings.TrimSpace(in.QuestionKG); v != "" {
		q.QuestionKG = v
	}
	if q.QuestionRU == "" {
		return Validation("Question in Russian is required")
	}
	if q.QuestionKG == "" {
		return Validation("Question in Kyrgyz is required")
	}

	if q.Type == model.TypeLogic {
		if in.OptionsRU != nil {
			q.OptionsRU = cleanOptions(in.OptionsRU)
		}
		if in.OptionsKG != nil {
			q.OptionsKG = cleanOptions(in.OptionsKG)
		}
		if len(q.OptionsRU) < 2 || len(q.OptionsKG) < 2 {
			return Validation("Logic questions require at least 2 options in each language")
		}
	} else {
		q.OptionsRU = []string{}
		q.OptionsKG = []string{}
	}

	if answer := strings.TrimSpace(in.CorrectAnswer); answer != "" {
		q.CorrectAnswer = answer
	} else if q.Type != model.TypeLogic {
		if create || q.CorrectAnswer == "" {
			q.CorrectAnswer = model.NoAnswer
		}
	} else if create || q.CorrectAnswer == "" || q.CorrectAnswer == model.NoAnswer {
		return Validation("Correct answer is required")
	}

	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	return nil
}

func (s *questionService) checkImage(img *ImageUpload) error {
	if len(img.Data) == 0 {
		return Validation("Image file is empty")
	}
	if int64(len(img.Data)) > s.maxImageBytes {
		return Validation("Image exceeds %d bytes", s.maxImageBytes)
	}
	if !strings.HasPrefix(mimetype.Detect(img.Data).String(), "image/") {
		return Validation("Only image files are allowed")
	}
	return nil
}

// ContentTypeFor infers an image content type from the file extension,
// defaulting to JPEG.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	return "image/jpeg"
}

func imageFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}

func cleanOptions(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

