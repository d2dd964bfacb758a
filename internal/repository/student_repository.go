package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizlink-backend/internal/model"
)

const studentColumns = `id, name, email, phone, institution_type, institution_name,
	class_grade, course, branch, semester, token, created_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.InstitutionType, &s.InstitutionName,
		&s.ClassGrade, &s.Course, &s.Branch, &s.Semester, &s.Token, &s.CreatedAt)
}

// GetByToken retrieves a student by their quiz token.
func (r *StudentRepository) GetByToken(ctx context.Context, token string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE token = $1`, token), s)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetByEmail retrieves a student by their normalized email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, email), s)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Create inserts a new student. A clash on email returns ErrDuplicateEmail.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, phone, institution_type, institution_name,
		                       class_grade, course, branch, semester, token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		s.Name, s.Email, s.Phone, s.InstitutionType, s.InstitutionName,
		s.ClassGrade, s.Course, s.Branch, s.Semester, s.Token,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "students_email_key") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// List returns every student ordered by creation.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// ListProgress returns every student with their submission state, if any.
func (r *StudentRepository) ListProgress(ctx context.Context) ([]model.StudentProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.email, s.phone, s.institution_type, s.institution_name,
		        s.class_grade, s.course, s.branch, s.semester, s.token, s.created_at,
		        sub.score, sub.submitted_at
		 FROM students s
		 LEFT JOIN submissions sub ON sub.student_id = s.id
		 ORDER BY s.created_at DESC, s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.StudentProgress
	for rows.Next() {
		var p model.StudentProgress
		s := &p.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.InstitutionType, &s.InstitutionName,
			&s.ClassGrade, &s.Course, &s.Branch, &s.Semester, &s.Token, &s.CreatedAt,
			&p.Score, &p.SubmittedAt); err != nil {
			return nil, err
		}
		p.Status = model.StatusPending
		if p.SubmittedAt != nil {
			p.Status = model.StatusSubmitted
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// DeleteMany removes students and their submissions in one transaction.
func (r *StudentRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM submissions WHERE student_id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("delete submissions: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM students WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}
