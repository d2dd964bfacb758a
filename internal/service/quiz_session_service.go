package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/metrics"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
)

// QuizSessionService runs the quiz-taking protocol: resolve a link, advance
// through the questions, and finalize exactly one submission per student.
type QuizSessionService struct {
	students    StudentStore
	quizzes     QuizStore
	ledger      SubmissionLedger
	payloads    PayloadSource
	serveLog    ServeLog
	timingFloor bool
	log         zerolog.Logger
	now         func() time.Time
}

// NewQuizSessionService creates a new QuizSessionService. serveLog may be nil,
// in which case client timings are only clamped to each question's limit.
func NewQuizSessionService(
	students StudentStore,
	quizzes QuizStore,
	ledger SubmissionLedger,
	payloads PayloadSource,
	serveLog ServeLog,
	timingFloor bool,
	log zerolog.Logger,
) *QuizSessionService {
	return &QuizSessionService{
		students:    students,
		quizzes:     quizzes,
		ledger:      ledger,
		payloads:    payloads,
		serveLog:    serveLog,
		timingFloor: timingFloor,
		log:         log.With().Str("component", "quiz_session_service").Logger(),
		now:         time.Now,
	}
}

// Resolve checks eligibility for a token and returns the session descriptor.
// The order of checks matters: a completed student is rejected with
// ErrAlreadyCompleted whatever the state of the current quiz.
func (s *QuizSessionService) Resolve(ctx context.Context, token string) (*model.SessionDescriptor, error) {
	sess, err := s.resolve(ctx, token)
	metrics.SessionResolutions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	if q, ok := firstQuestion(sess.Descriptor); ok {
		s.markServed(ctx, sess.StudentID, q.ID)
	}
	return &sess.Descriptor, nil
}

func (s *QuizSessionService) resolve(ctx context.Context, token string) (Session, error) {
	sess := Session{State: StateUnresolved}

	student, err := s.students.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sess.Reject(ErrNotFound), ErrNotFound
		}
		return sess, fmt.Errorf("get student: %w", err)
	}

	done, err := s.ledger.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return sess, fmt.Errorf("check submission: %w", err)
	}
	if done {
		return sess.Reject(ErrAlreadyCompleted), ErrAlreadyCompleted
	}

	quiz, err := s.quizzes.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sess.Reject(ErrNoActiveQuiz), ErrNoActiveQuiz
		}
		return sess, fmt.Errorf("get active quiz: %w", err)
	}
	if !quiz.IsActive {
		return sess.Reject(ErrQuizDisabled), ErrQuizDisabled
	}

	payload, err := s.payloads.Payload(ctx, quiz.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sess.Reject(ErrNoActiveQuiz), ErrNoActiveQuiz
		}
		return sess, fmt.Errorf("load quiz payload: %w", err)
	}

	return Eligible(student.ID, descriptorFor(student, payload)), nil
}

// Advance records the answer for the current question and returns the next
// one. The session is rebuilt from the token, the quiz id and the answers the
// client already holds. A quiz disabled after resolve does not stop an
// in-flight session.
func (s *QuizSessionService) Advance(ctx context.Context, token string, req model.AdvanceQuizRequest) (*model.AdvanceQuizResponse, error) {
	student, err := s.students.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	done, err := s.ledger.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if done {
		return nil, ErrAlreadyCompleted
	}

	payload, err := s.payloads.Payload(ctx, req.QuizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveQuiz
		}
		return nil, fmt.Errorf("load quiz payload: %w", err)
	}

	sess, err := Eligible(student.ID, descriptorFor(student, payload)).Resume(req.Answers)
	if err != nil {
		return nil, err
	}
	answered, _ := sess.Current()

	index := -1
	if req.QuestionIndex != nil {
		index = *req.QuestionIndex
	}
	next, err := sess.Advance(index, req.SelectedIndex, req.ElapsedSeconds)
	if err != nil {
		return nil, err
	}

	s.recordAnswered(ctx, student.ID, answered.ID)

	resp := &model.AdvanceQuizResponse{
		State:         string(next.State),
		QuestionIndex: next.Index,
		Answers:       next.Answers,
	}
	if q, ok := next.Current(); ok {
		resp.Question = &q
		s.markServed(ctx, student.ID, q.ID)
	}
	return resp, nil
}

// Submit scores the answers against the current quiz's questions and writes
// the single ledger entry for the student. Answers for questions outside the
// current quiz score 0. A repeated call returns ErrAlreadyCompleted and never
// writes a second entry.
func (s *QuizSessionService) Submit(ctx context.Context, token string, answers model.AnswerSet) (*model.SubmitQuizResponse, error) {
	resp, err := s.submit(ctx, token, answers)
	metrics.Submissions.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		metrics.SubmissionScore.Observe(float64(resp.Score))
	}
	return resp, err
}

func (s *QuizSessionService) submit(ctx context.Context, token string, answers model.AnswerSet) (*model.SubmitQuizResponse, error) {
	student, err := s.students.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidUser
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	// Early exit only; the ledger's uniqueness constraint decides.
	done, err := s.ledger.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if done {
		return nil, ErrAlreadyCompleted
	}

	sess := Session{StudentID: student.ID, State: StateFinalizing, Answers: model.AnswerSet{}}
	var score, total int

	if len(answers) > 0 {
		questions, err := s.answerKeys(ctx, answers)
		if err != nil {
			return nil, err
		}
		sess.Answers = s.normalize(ctx, student.ID, questions, answers)
		score, total = Tally(questions, sess.Answers)
	}

	sub := &model.Submission{
		StudentID: student.ID,
		Score:     score,
		Answers:   sess.Answers,
	}
	if err := s.ledger.Insert(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrAlreadySubmitted) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	sess, err = sess.Complete()
	if err != nil {
		return nil, err
	}

	if s.serveLog != nil {
		if err := s.serveLog.Clear(ctx, student.ID); err != nil {
			s.log.Warn().Err(err).Str("student_id", student.ID.String()).Msg("Failed to clear serve log")
		}
	}

	s.log.Info().
		Str("student_id", student.ID.String()).
		Str("state", string(sess.State)).
		Int("answers", len(sess.Answers)).
		Int("score", score).
		Int("total", total).
		Msg("Quiz submitted")

	return &model.SubmitQuizResponse{Score: score, Total: total}, nil
}

// answerKeys fetches the current quiz's stored questions for every answered
// id. Ids that are not valid UUIDs cannot match a question and are skipped.
// With no current quiz nothing matches. is_active is not consulted.
func (s *QuizSessionService) answerKeys(ctx context.Context, answers model.AnswerSet) (map[string]model.Question, error) {
	quiz, err := s.quizzes.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return map[string]model.Question{}, nil
		}
		return nil, fmt.Errorf("get current quiz: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(answers))
	for qid := range answers {
		id, err := uuid.Parse(qid)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	questions, err := s.quizzes.GetQuestionsByIDs(ctx, quiz.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("get answer keys: %w", err)
	}

	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID.String()] = q
	}
	return byID, nil
}

// normalize bounds every reported time by the stored limit. When the server
// measured a longer elapsed time for a question, that measurement wins.
func (s *QuizSessionService) normalize(ctx context.Context, studentID uuid.UUID, questions map[string]model.Question, answers model.AnswerSet) model.AnswerSet {
	var measured map[string]int
	if s.timingFloor && s.serveLog != nil {
		var err error
		measured, err = s.serveLog.Elapsed(ctx, studentID)
		if err != nil {
			s.log.Warn().Err(err).Str("student_id", studentID.String()).Msg("Serve log unavailable, using client timings")
		}
	}

	out := make(model.AnswerSet, len(answers))
	for qid, a := range answers {
		q, ok := questions[qid]
		if !ok {
			out[qid] = a
			continue
		}

		taken := ClampTimeTaken(a.TimeTaken, q.TimeSeconds)
		if floor, ok := measured[qid]; ok && floor > taken {
			taken = min(floor, q.TimeSeconds)
		}
		a.TimeTaken = &taken
		out[qid] = a
	}
	return out
}

func (s *QuizSessionService) markServed(ctx context.Context, studentID, questionID uuid.UUID) {
	if s.serveLog == nil {
		return
	}
	if err := s.serveLog.MarkServed(ctx, studentID, questionID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID.String()).Msg("Failed to record question serve time")
	}
}

func (s *QuizSessionService) recordAnswered(ctx context.Context, studentID, questionID uuid.UUID) {
	if s.serveLog == nil {
		return
	}
	if _, _, err := s.serveLog.RecordAnswered(ctx, studentID, questionID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID.String()).Msg("Failed to record answer time")
	}
}

func descriptorFor(student *model.Student, payload *model.QuizPayload) model.SessionDescriptor {
	questions := payload.Questions
	if questions == nil {
		questions = []model.QuestionForStudent{}
	}
	return model.SessionDescriptor{
		Student:   model.StudentSummary{Name: student.Name, Email: student.Email},
		Quiz:      model.QuizSummary{ID: payload.QuizID, Title: payload.Title},
		Questions: questions,
	}
}

func firstQuestion(d model.SessionDescriptor) (model.QuestionForStudent, bool) {
	if len(d.Questions) == 0 {
		return model.QuestionForStudent{}, false
	}
	return d.Questions[0], true
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidUser):
		return "invalid_user"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrNoActiveQuiz):
		return "no_active_quiz"
	case errors.Is(err, ErrQuizDisabled):
		return "quiz_disabled"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
