package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoAnswer is stored as the correct answer of questions that are not graded.
const NoAnswer = "N/A"

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FullName    string    `json:"full_name" gorm:"size:255;not null"`
	PhoneNumber string    `json:"phone_number" gorm:"size:32;not null;uniqueIndex"`
	Age         int       `json:"age" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Admin struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Question struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Level         Level        `json:"level" gorm:"size:8;not null;index:idx_questions_level_active"`
	Type          QuestionType `json:"type" gorm:"size:16;not null"`
	QuestionRU    string       `json:"question_ru" gorm:"type:text;not null"`
	QuestionKG    string       `json:"question_kg" gorm:"type:text;not null"`
	OptionsRU     []string     `json:"options_ru" gorm:"type:text;serializer:json"`
	OptionsKG     []string     `json:"options_kg" gorm:"type:text;serializer:json"`
	CorrectAnswer string       `json:"correct_answer" gorm:"type:text;not null"`
	ImageFile     []byte       `json:"-"`
	ImageFilename string       `json:"image_filename,omitempty" gorm:"size:255"`
	IsActive      bool         `json:"is_active" gorm:"not null;index:idx_questions_level_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// HasImage reports whether an image blob is attached. The filename is
// written together with the blob, so it is enough when the blob column
// was not selected.
func (q *Question) HasImage() bool {
	return q.ImageFilename != "" || len(q.ImageFile) > 0
}

// Text returns the question text in the given language.
func (q *Question) Text(lang Language) string {
	if lang == LanguageKG {
		return q.QuestionKG
	}
	return q.QuestionRU
}

// Options returns the answer options in the given language.
func (q *Question) Options(lang Language) []string {
	if lang == LanguageKG {
		return q.OptionsKG
	}
	return q.OptionsRU
}

type TestSettings struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Level       Level     `json:"level" gorm:"size:8;not null;uniqueIndex"`
	TimeMinutes int       `json:"time_minutes" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AnswerRecord is one submitted answer as it is stored inside a Result.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Result is created once per (user, level) and never modified.
type Result struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_results_user_level"`
	Level       Level          `json:"level" gorm:"size:8;not null;uniqueIndex:idx_results_user_level"`
	Score       int            `json:"score" gorm:"not null"`
	Percentage  int            `json:"percentage" gorm:"not null"`
	Tier        Tier           `json:"color_level" gorm:"column:color_level;size:8;not null"`
	Answers     []AnswerRecord `json:"answers" gorm:"type:text;serializer:json"`
	CompletedAt time.Time      `json:"completed_at" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TestSession records when a user first received the question set of a
// level. It is only consulted when strict timing is enabled.
type TestSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_sessions_user_level"`
	Level     Level     `json:"level" gorm:"size:8;not null;uniqueIndex:idx_sessions_user_level"`
	StartedAt time.Time `json:"started_at" gorm:"not null"`
}

func (u *User) BeforeCreate(*gorm.DB) error         { u.ID = ensureID(u.ID); return nil }
func (a *Admin) BeforeCreate(*gorm.DB) error        { a.ID = ensureID(a.ID); return nil }
func (q *Question) BeforeCreate(*gorm.DB) error     { q.ID = ensureID(q.ID); return nil }
func (s *TestSettings) BeforeCreate(*gorm.DB) error { s.ID = ensureID(s.ID); return nil }
func (r *Result) BeforeCreate(*gorm.DB) error       { r.ID = ensureID(r.ID); return nil }
func (s *TestSession) BeforeCreate(*gorm.DB) error  { s.ID = ensureID(s.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&Question{},
		&TestSettings{},
		&Result{},
		&TestSession{},
	}
}
