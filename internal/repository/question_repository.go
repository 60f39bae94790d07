package repository

import (
	"context"

	"okurmen-backend/internal/db"
	"okurmen-backend/internal/db/query"
	"okurmen-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// editableColumns are written by UpdateQuestion. The image columns are
// managed separately so that editing text never drops an uploaded image.
var editableColumns = []string{
	"level", "type", "question_ru", "question_kg",
	"options_ru", "options_kg", "correct_answer", "is_active", "updated_at",
}

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q *model.Question) error
	UpdateQuestion(ctx context.Context, q *model.Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	GetQuestionByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	GetActiveQuestionsByLevel(ctx context.Context, level model.Level) ([]model.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error)
	ListQuestions(ctx context.Context, filter *query.Filter) ([]model.Question, error)
	GetQuestionImage(ctx context.Context, id uuid.UUID) (*model.Question, error)
	SetQuestionImage(ctx context.Context, id uuid.UUID, filename string, data []byte) error
	CountActiveByLevel(ctx context.Context) (map[model.Level]int64, error)
}

type questionRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewQuestionRepository(gdb *gorm.DB) QuestionRepository {
	return &questionRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *questionRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	return translate(r.db.WithContext(ctx).Create(q).Error)
}

func (r *questionRepository) UpdateQuestion(ctx context.Context, q *model.Question) error {
	res := r.db.WithContext(ctx).Model(q).
		Select(editableColumns).
		Updates(q)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Question{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) GetQuestionByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).Omit("image_file").Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *questionRepository) GetActiveQuestionsByLevel(ctx context.Context, level model.Level) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Omit("image_file").
		Where("level = ? AND is_active = ?", level, true).
		Order("created_at ASC").
		Find(&questions).Error
	return questions, translate(err)
}

func (r *questionRepository) GetQuestionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	out := make(map[uuid.UUID]model.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []model.Question
	if err := r.db.WithContext(ctx).Omit("image_file").Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, translate(err)
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

func (r *questionRepository) ListQuestions(ctx context.Context, filter *query.Filter) ([]model.Question, error) {
	var questions []model.Question
	tx := r.db.WithContext(ctx).Omit("image_file")
	if filter != nil {
		tx = filter.Apply(tx)
	}
	err := tx.Order("created_at DESC").Find(&questions).Error
	return questions, translate(err)
}

func (r *questionRepository) GetQuestionImage(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).
		Select("id", "image_file", "image_filename").
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

// SetQuestionImage replaces the image of a question. An empty filename and
// nil data remove it.
func (r *questionRepository) SetQuestionImage(ctx context.Context, id uuid.UUID, filename string, data []byte) error {
	res := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_file":     data,
			"image_filename": filename,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) CountActiveByLevel(ctx context.Context) (map[model.Level]int64, error) {
	groups, err := r.qe.CountBy(ctx, &model.Question{}, "level", query.NewFilter().Equal("is_active", true))
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[model.Level]int64, len(groups))
	for _, g := range groups {
		out[model.Level(g.GroupKey)] = g.Count
	}
	return out, nil
}
