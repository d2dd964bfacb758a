package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizlink-backend/internal/model"
)

// QuizRepository handles quizzes, their questions and the active-quiz pointer.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetActive follows the active pointer. A missing pointer or a pointer to a
// deleted quiz both return ErrNotFound.
func (r *QuizRepository) GetActive(ctx context.Context) (*model.Quiz, error) {
	setting, err := getSetting(ctx, r.pool, model.SettingActiveQuizID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(setting.Value)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, is_active, created_at FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.Title, &q.IsActive, &q.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

// ListQuestions returns a quiz's questions in presentation order.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, options, correct_index, time_seconds, order_num
		 FROM questions WHERE quiz_id = $1
		 ORDER BY order_num, id`, quizID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// GetQuestionsByIDs returns the questions of one quiz matching ids. Unknown
// ids and ids belonging to other quizzes are ignored.
func (r *QuizRepository) GetQuestionsByIDs(ctx context.Context, quizID uuid.UUID, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, options, correct_index, time_seconds, order_num
		 FROM questions WHERE quiz_id = $1 AND id = ANY($2)`, quizID, ids)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionText, &options, &q.CorrectIndex, &q.TimeSeconds, &q.OrderNum); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CreateWithQuestions inserts a quiz with its questions and points the
// active pointer at it, all in one transaction.
func (r *QuizRepository) CreateWithQuestions(ctx context.Context, quiz *model.Quiz, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, is_active) VALUES ($1, $2)
		 RETURNING id, created_at`,
		quiz.Title, quiz.IsActive,
	).Scan(&quiz.ID, &quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range questions {
		options, err := json.Marshal(questions[i].Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		questions[i].QuizID = quiz.ID
		batch.Queue(
			`INSERT INTO questions (quiz_id, question_text, options, correct_index, time_seconds, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			quiz.ID, questions[i].QuestionText, options, questions[i].CorrectIndex,
			questions[i].TimeSeconds, questions[i].OrderNum,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range questions {
		if err := br.QueryRow().Scan(&questions[i].ID); err != nil {
			br.Close()
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := upsertSetting(ctx, tx, model.SettingActiveQuizID, quiz.ID.String()); err != nil {
		return fmt.Errorf("set active quiz: %w", err)
	}

	return tx.Commit(ctx)
}

// SetActive flips is_active on a quiz.
func (r *QuizRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE quizzes SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every quiz and question and clears the pointer.
// Students and submissions are kept. Returns the deleted quiz ids.
func (r *QuizRepository) DeleteAll(ctx context.Context) ([]uuid.UUID, error) {
	return r.wipe(ctx, false)
}

// ResetAll removes submissions, students, questions, quizzes and the pointer.
func (r *QuizRepository) ResetAll(ctx context.Context) ([]uuid.UUID, error) {
	return r.wipe(ctx, true)
}

func (r *QuizRepository) wipe(ctx context.Context, withStudents bool) ([]uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if withStudents {
		if _, err := tx.Exec(ctx, `DELETE FROM submissions`); err != nil {
			return nil, fmt.Errorf("delete submissions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM students`); err != nil {
			return nil, fmt.Errorf("delete students: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return nil, fmt.Errorf("delete questions: %w", err)
	}

	rows, err := tx.Query(ctx, `DELETE FROM quizzes RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("delete quizzes: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect quiz ids: %w", err)
	}

	if err := deleteSetting(ctx, tx, model.SettingActiveQuizID); err != nil {
		return nil, fmt.Errorf("clear active quiz: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}
