package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
)

// QuizAdminService manages the question set and the active quiz pointer.
type QuizAdminService struct {
	quizzes            QuizAdminStore
	payloads           PayloadSource
	defaultTimeSeconds int
	log                zerolog.Logger
	now                func() time.Time
}

// NewQuizAdminService creates a new QuizAdminService.
func NewQuizAdminService(quizzes QuizAdminStore, payloads PayloadSource, defaultTimeSeconds int, log zerolog.Logger) *QuizAdminService {
	if defaultTimeSeconds <= 0 {
		defaultTimeSeconds = 30
	}
	return &QuizAdminService{
		quizzes:            quizzes,
		payloads:           payloads,
		defaultTimeSeconds: defaultTimeSeconds,
		log:                log.With().Str("component", "quiz_admin_service").Logger(),
		now:                time.Now,
	}
}

// Upload stores a new quiz and makes it the current one.
func (s *QuizAdminService) Upload(ctx context.Context, req model.UploadQuestionsRequest) (*model.UploadQuestionsResponse, error) {
	if len(req.Questions) == 0 {
		return nil, newValidationError("questions", "questions must contain at least 1 item")
	}

	questions := make([]model.Question, 0, len(req.Questions))
	verr := &ValidationError{}
	for i, in := range req.Questions {
		q, msg := s.normalizeQuestion(in, i)
		if msg != "" {
			verr.add(fmt.Sprintf("questions[%d]", i), msg)
			continue
		}
		questions = append(questions, q)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) > 255 {
		return nil, newValidationError("title", "title must be a maximum of 255 characters in length")
	}
	if title == "" {
		title = "Untitled Quiz " + s.now().UTC().Format(time.RFC3339)
	}

	quiz := &model.Quiz{Title: title, IsActive: true}
	if err := s.quizzes.CreateWithQuestions(ctx, quiz, questions); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Int("questions", len(questions)).
		Msg("Quiz uploaded and activated")

	return &model.UploadQuestionsResponse{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		QuestionCount: len(questions),
	}, nil
}

// normalizeQuestion resolves the correct index (explicit index, else the
// position of correctAnswer, else 0) and the time limit.
func (s *QuizAdminService) normalizeQuestion(in model.UploadQuestionInput, order int) (model.Question, string) {
	text := strings.TrimSpace(in.Question)
	if text == "" {
		return model.Question{}, "question text is required"
	}

	// Blank options are dropped; kept maps each submitted position to its
	// position after the drop, or -1.
	options := make([]string, 0, len(in.Options))
	kept := make([]int, len(in.Options))
	for i, o := range in.Options {
		kept[i] = -1
		if o = strings.TrimSpace(o); o != "" {
			kept[i] = len(options)
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return model.Question{}, "at least 2 non-empty options are required"
	}

	correct := -1
	if in.CorrectIndex != nil {
		if i := *in.CorrectIndex; i >= 0 && i < len(kept) {
			correct = kept[i]
		}
	} else if answer := strings.TrimSpace(in.CorrectAnswer); answer != "" {
		correct = slices.Index(options, answer)
	}
	if correct < 0 {
		correct = 0
	}

	limit := in.Time
	if limit <= 0 {
		limit = s.defaultTimeSeconds
	}

	return model.Question{
		QuestionText: text,
		Options:      options,
		CorrectIndex: correct,
		TimeSeconds:  limit,
		OrderNum:     order,
	}, ""
}

// Status reports the current quiz, if any.
func (s *QuizAdminService) Status(ctx context.Context) (*model.QuizStatus, error) {
	quiz, err := s.quizzes.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.QuizStatus{Available: false}, nil
		}
		return nil, fmt.Errorf("get active quiz: %w", err)
	}
	id := quiz.ID
	return &model.QuizStatus{
		Available: true,
		ID:        &id,
		Title:     quiz.Title,
		IsActive:  quiz.IsActive,
	}, nil
}

// Toggle enables or disables a quiz. Sessions already resolved keep running.
func (s *QuizAdminService) Toggle(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.quizzes.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("set active: %w", err)
	}
	s.log.Info().Str("quiz_id", id.String()).Bool("is_active", active).Msg("Quiz toggled")
	return nil
}

// DeleteQuiz removes all quizzes and questions. Students and submissions stay.
func (s *QuizAdminService) DeleteQuiz(ctx context.Context) error {
	ids, err := s.quizzes.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("delete quizzes: %w", err)
	}
	s.invalidate(ctx, ids)
	s.log.Info().Int("quizzes", len(ids)).Msg("Quizzes deleted")
	return nil
}

// Reset wipes every quiz, student and submission.
func (s *QuizAdminService) Reset(ctx context.Context) error {
	ids, err := s.quizzes.ResetAll(ctx)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.invalidate(ctx, ids)
	s.log.Warn().Int("quizzes", len(ids)).Msg("Database reset")
	return nil
}

func (s *QuizAdminService) invalidate(ctx context.Context, ids []uuid.UUID) {
	if err := s.payloads.Invalidate(ctx, ids...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate quiz payload cache")
	}
}
