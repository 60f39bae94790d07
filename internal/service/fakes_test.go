package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"okurmen-backend/internal/db/query"
	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/google/uuid"
)

/* ---------------- In-memory fakes for the repository interfaces ---------------- */

type fakeQuestions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.Question
	// order keeps insertion order so delivery is deterministic.
	order    []uuid.UUID
	err      error
	lastList *query.Filter
}

func newFakeQuestions(qs ...model.Question) *fakeQuestions {
	f := &fakeQuestions{byID: map[uuid.UUID]model.Question{}}
	for _, q := range qs {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		f.byID[q.ID] = q
		f.order = append(f.order, q.ID)
	}
	return f
}

func (f *fakeQuestions) all() []model.Question {
	out := make([]model.Question, 0, len(f.order))
	for _, id := range f.order {
		if q, ok := f.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeQuestions) CreateQuestion(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	f.byID[q.ID] = *q
	f.order = append(f.order, q.ID)
	return nil
}

func (f *fakeQuestions) UpdateQuestion(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[q.ID]
	if !ok {
		return repository.ErrNotFound
	}
	img, name := stored.ImageFile, stored.ImageFilename
	stored = *q
	stored.ImageFile, stored.ImageFilename = img, name
	f.byID[q.ID] = stored
	return nil
}

func (f *fakeQuestions) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeQuestions) GetQuestionByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	q.ImageFile = nil
	return &q, nil
}

func (f *fakeQuestions) GetActiveQuestionsByLevel(_ context.Context, level model.Level) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Question
	for _, q := range f.all() {
		if q.Level == level && q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) GetQuestionsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]model.Question{}
	for _, id := range ids {
		if q, ok := f.byID[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeQuestions) ListQuestions(_ context.Context, filter *query.Filter) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	return f.all(), nil
}

func (f *fakeQuestions) GetQuestionImage(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (f *fakeQuestions) SetQuestionImage(_ context.Context, id uuid.UUID, filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	q.ImageFilename, q.ImageFile = filename, data
	f.byID[id] = q
	return nil
}

func (f *fakeQuestions) CountActiveByLevel(_ context.Context) (map[model.Level]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[model.Level]int64{}
	for _, q := range f.byID {
		if q.IsActive {
			out[q.Level]++
		}
	}
	return out, nil
}

type fakeSettings struct {
	mu      sync.Mutex
	byLevel map[model.Level]model.TestSettings
	upserts int
}

func newFakeSettings(minutes map[model.Level]int) *fakeSettings {
	f := &fakeSettings{byLevel: map[model.Level]model.TestSettings{}}
	for l, m := range minutes {
		f.byLevel[l] = model.TestSettings{ID: uuid.New(), Level: l, TimeMinutes: m}
	}
	return f
}

func (f *fakeSettings) GetSettingsByLevel(_ context.Context, level model.Level) (*model.TestSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byLevel[level]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (f *fakeSettings) ListSettings(_ context.Context) ([]model.TestSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TestSettings, 0, len(f.byLevel))
	for _, row := range f.byLevel {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (f *fakeSettings) UpsertSettings(_ context.Context, entries []model.TestSettings) ([]model.TestSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	out := make([]model.TestSettings, 0, len(entries))
	for _, e := range entries {
		row, ok := f.byLevel[e.Level]
		if !ok {
			row = model.TestSettings{ID: uuid.New(), Level: e.Level}
		}
		row.TimeMinutes = e.TimeMinutes
		f.byLevel[e.Level] = row
		out = append(out, row)
	}
	return out, nil
}

type fakeResults struct {
	mu      sync.Mutex
	rows    []model.Result
	creates int
}

func (f *fakeResults) CreateResultOnce(_ context.Context, res *model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == res.UserID && r.Level == res.Level {
			return repository.ErrDuplicate
		}
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	f.creates++
	f.rows = append(f.rows, *res)
	return nil
}

func (f *fakeResults) GetResultsByUser(_ context.Context, userID uuid.UUID) ([]model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Result
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResults) GetResultByUserAndLevel(_ context.Context, userID uuid.UUID, level model.Level) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.Level == level {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResults) ListResults(_ context.Context, limit int) ([]model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.Result(nil), f.rows...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	rows map[string]model.TestSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]model.TestSession{}}
}

func sessionKey(userID uuid.UUID, level model.Level) string {
	return userID.String() + "|" + string(level)
}

func (f *fakeSessions) StartSession(_ context.Context, userID uuid.UUID, level model.Level, startedAt time.Time) (*model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := sessionKey(userID, level)
	row, ok := f.rows[k]
	if !ok {
		row = model.TestSession{ID: uuid.New(), UserID: userID, Level: level, StartedAt: startedAt}
		f.rows[k] = row
	}
	return &row, nil
}

func (f *fakeSessions) GetSession(_ context.Context, userID uuid.UUID, level model.Level) (*model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[sessionKey(userID, level)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.User
}

func newFakeUsers(us ...model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uuid.UUID]model.User{}}
	for _, u := range us {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.PhoneNumber == user.PhoneNumber {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.rows[user.ID] = *user
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByPhone(_ context.Context, phone string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.PhoneNumber == phone {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]model.User{}
	for _, id := range ids {
		if u, ok := f.rows[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.rows))
	for _, u := range f.rows {
		out = append(out, u)
	}
	return out, nil
}

type fakeAdmins struct {
	rows map[string]model.Admin
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{rows: map[string]model.Admin{}}
}

func (f *fakeAdmins) CreateAdmin(_ context.Context, admin *model.Admin) error {
	if _, ok := f.rows[admin.Email]; ok {
		return repository.ErrDuplicate
	}
	f.rows[admin.Email] = *admin
	return nil
}

func (f *fakeAdmins) GetAdminByID(_ context.Context, id uuid.UUID) (*model.Admin, error) {
	for _, a := range f.rows {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) GetAdminByEmail(_ context.Context, email string) (*model.Admin, error) {
	a, ok := f.rows[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

/* ---------------- Fixtures ---------------- */

func logicQuestion(level model.Level, correct string) model.Question {
	return model.Question{
		ID:            uuid.New(),
		Level:         level,
		Type:          model.TypeLogic,
		QuestionRU:    "Вопрос " + correct,
		QuestionKG:    "Суроо " + correct,
		OptionsRU:     []string{"a", "b", "c"},
		OptionsKG:     []string{"а", "б", "в"},
		CorrectAnswer: correct,
		IsActive:      true,
	}
}

func motivationalQuestion(level model.Level) model.Question {
	return model.Question{
		ID:            uuid.New(),
		Level:         level,
		Type:          model.TypeMotivational,
		QuestionRU:    "Почему?",
		QuestionKG:    "Эмне үчүн?",
		CorrectAnswer: model.NoAnswer,
		IsActive:      true,
	}
}

func answer(q model.Question, given string) model.AnswerRecord {
	return model.AnswerRecord{QuestionID: q.ID.String(), Answer: given}
}
