// Package memory is an in-process implementation of the quiz stores. It is
// used by tests and by tooling that runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
)

// Store keeps students, quizzes, questions and submissions in maps and
// honours the same uniqueness rules as the SQL schema.
type Store struct {
	mu          sync.RWMutex
	students    map[uuid.UUID]model.Student
	quizzes     map[uuid.UUID]model.Quiz
	questions   map[uuid.UUID]model.Question
	submissions map[uuid.UUID]model.Submission // keyed by student id
	activeQuiz  uuid.UUID
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		students:    make(map[uuid.UUID]model.Student),
		quizzes:     make(map[uuid.UUID]model.Quiz),
		questions:   make(map[uuid.UUID]model.Question),
		submissions: make(map[uuid.UUID]model.Submission),
		now:         time.Now,
	}
}

// ─── Students ──────────────────────────────────────────────────────────

func (s *Store) GetByToken(_ context.Context, token string) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.Token == token {
			st := st
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.Email == email {
			st := st
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Create(_ context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if existing.Email == st.Email {
			return repository.ErrDuplicateEmail
		}
	}
	st.ID = uuid.New()
	st.CreatedAt = s.now()
	s.students[st.ID] = *st
	return nil
}

func (s *Store) List(_ context.Context) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListProgress(ctx context.Context) ([]model.StudentProgress, error) {
	students, _ := s.List(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StudentProgress, 0, len(students))
	for i := len(students) - 1; i >= 0; i-- {
		p := model.StudentProgress{Student: students[i], Status: model.StatusPending}
		if sub, ok := s.submissions[students[i].ID]; ok {
			score, at := sub.Score, sub.SubmittedAt
			p.Score, p.SubmittedAt, p.Status = &score, &at, model.StatusSubmitted
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		delete(s.submissions, id)
		if _, ok := s.students[id]; ok {
			delete(s.students, id)
			n++
		}
	}
	return n, nil
}

// ─── Quizzes ───────────────────────────────────────────────────────────

func (s *Store) GetActive(ctx context.Context) (*model.Quiz, error) {
	s.mu.RLock()
	id := s.activeQuiz
	s.mu.RUnlock()
	if id == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID uuid.UUID) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Question
	for _, q := range s.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNum < out[j].OrderNum })
	return out, nil
}

func (s *Store) GetQuestionsByIDs(_ context.Context, quizID uuid.UUID, ids []uuid.UUID) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Question
	for _, id := range ids {
		if q, ok := s.questions[id]; ok && q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) CreateWithQuestions(_ context.Context, quiz *model.Quiz, questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = uuid.New()
	quiz.CreatedAt = s.now()
	s.quizzes[quiz.ID] = *quiz
	for i := range questions {
		questions[i].ID = uuid.New()
		questions[i].QuizID = quiz.ID
		s.questions[questions[i].ID] = questions[i]
	}
	s.activeQuiz = quiz.ID
	return nil
}

func (s *Store) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return repository.ErrNotFound
	}
	q.IsActive = active
	s.quizzes[id] = q
	return nil
}

func (s *Store) DeleteAll(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wipeQuizzes(), nil
}

func (s *Store) ResetAll(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = make(map[uuid.UUID]model.Submission)
	s.students = make(map[uuid.UUID]model.Student)
	return s.wipeQuizzes(), nil
}

func (s *Store) wipeQuizzes() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.quizzes))
	for id := range s.quizzes {
		ids = append(ids, id)
	}
	s.quizzes = make(map[uuid.UUID]model.Quiz)
	s.questions = make(map[uuid.UUID]model.Question)
	s.activeQuiz = uuid.Nil
	return ids
}

// ─── Submissions ───────────────────────────────────────────────────────

func (s *Store) ExistsForStudent(_ context.Context, studentID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.submissions[studentID]
	return ok, nil
}

func (s *Store) Insert(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.StudentID]; ok {
		return repository.ErrAlreadySubmitted
	}
	sub.ID = uuid.New()
	sub.SubmittedAt = s.now()
	if sub.Answers == nil {
		sub.Answers = model.AnswerSet{}
	}
	s.submissions[sub.StudentID] = *sub
	return nil
}

func (s *Store) GetByStudent(_ context.Context, studentID uuid.UUID) (*model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sub, nil
}

// SubmissionCount is a test helper.
func (s *Store) SubmissionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions)
}

func (s *Store) ListResults(_ context.Context) ([]model.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ResultRow, 0, len(s.submissions))
	for sid, sub := range s.submissions {
		st, ok := s.students[sid]
		if !ok {
			continue
		}
		out = append(out, model.ResultRow{Student: st, Score: sub.Score, SubmittedAt: sub.SubmittedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}
