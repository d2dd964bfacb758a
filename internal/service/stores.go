package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/quizlink-backend/internal/model"
)

// StudentStore is the student registry as seen by the session protocol.
type StudentStore interface {
	GetByToken(ctx context.Context, token string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
}

// RosterStore adds the admin listing and bulk delete.
type RosterStore interface {
	StudentStore
	List(ctx context.Context) ([]model.Student, error)
	ListProgress(ctx context.Context) ([]model.StudentProgress, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// QuizStore supports lookup of the current quiz and authoritative answer keys.
type QuizStore interface {
	GetActive(ctx context.Context) (*model.Quiz, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error)
	GetQuestionsByIDs(ctx context.Context, quizID uuid.UUID, ids []uuid.UUID) ([]model.Question, error)
}

// QuizAdminStore adds the write side used by the admin surface.
type QuizAdminStore interface {
	QuizStore
	CreateWithQuestions(ctx context.Context, quiz *model.Quiz, questions []model.Question) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteAll(ctx context.Context) ([]uuid.UUID, error)
	ResetAll(ctx context.Context) ([]uuid.UUID, error)
}

// SubmissionLedger is append-only; Insert must be atomic per student.
type SubmissionLedger interface {
	ExistsForStudent(ctx context.Context, studentID uuid.UUID) (bool, error)
	Insert(ctx context.Context, sub *model.Submission) error
}

// ResultStore lists completed submissions for export.
type ResultStore interface {
	ListResults(ctx context.Context) ([]model.ResultRow, error)
}

// PayloadSource serves the student-facing quiz payload.
type PayloadSource interface {
	Payload(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error)
	Invalidate(ctx context.Context, quizIDs ...uuid.UUID) error
}

// ServeLog records question serve times. It is a hint: failures never fail a request.
type ServeLog interface {
	MarkServed(ctx context.Context, studentID, questionID uuid.UUID, at time.Time) error
	RecordAnswered(ctx context.Context, studentID, questionID uuid.UUID, at time.Time) (int, bool, error)
	Elapsed(ctx context.Context, studentID uuid.UUID) (map[string]int, error)
	Clear(ctx context.Context, studentID uuid.UUID) error
}
