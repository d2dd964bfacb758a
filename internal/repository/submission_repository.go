package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizlink-backend/internal/model"
)

// SubmissionRepository is the submission ledger. The UNIQUE constraint on
// student_id is the authority for "already completed".
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// ExistsForStudent reports whether the student already has a ledger entry.
func (r *SubmissionRepository) ExistsForStudent(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE student_id = $1)`, studentID,
	).Scan(&exists)
	return exists, err
}

// Insert appends a ledger entry. A second entry for the same student is not
// written and ErrAlreadySubmitted is returned.
func (r *SubmissionRepository) Insert(ctx context.Context, sub *model.Submission) error {
	answers := sub.Answers
	if answers == nil {
		answers = model.AnswerSet{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO submissions (student_id, score, answers)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (student_id) DO NOTHING
		 RETURNING id, submitted_at`,
		sub.StudentID, sub.Score, raw,
	).Scan(&sub.ID, &sub.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadySubmitted
	}
	return err
}

// GetByStudent returns the ledger entry for a student.
func (r *SubmissionRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.Submission, error) {
	sub := &model.Submission{}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, score, answers, submitted_at FROM submissions WHERE student_id = $1`, studentID,
	).Scan(&sub.ID, &sub.StudentID, &sub.Score, &raw, &sub.SubmittedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &sub.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return sub, nil
}

// ListResults returns submitted students, best score first.
func (r *SubmissionRepository) ListResults(ctx context.Context) ([]model.ResultRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.email, s.phone, s.institution_type, s.institution_name,
		        s.class_grade, s.course, s.branch, s.semester, s.token, s.created_at,
		        sub.score, sub.submitted_at
		 FROM submissions sub
		 JOIN students s ON s.id = sub.student_id
		 ORDER BY sub.score DESC, sub.submitted_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultRow
	for rows.Next() {
		var row model.ResultRow
		s := &row.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.InstitutionType, &s.InstitutionName,
			&s.ClassGrade, &s.Course, &s.Branch, &s.Semester, &s.Token, &s.CreatedAt,
			&row.Score, &row.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
