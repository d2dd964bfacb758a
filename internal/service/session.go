package service

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/stemsi/quizlink-backend/internal/model"
)

// SessionState is a step of the quiz-taking protocol.
type SessionState string

const (
	StateUnresolved SessionState = "unresolved"
	StateEligible   SessionState = "eligible"
	StateInProgress SessionState = "in_progress"
	StateFinalizing SessionState = "finalizing"
	StateCompleted  SessionState = "completed"
	StateRejected   SessionState = "rejected"
)

// Session is a value rebuilt from the request on every call; nothing about it
// is kept in server memory. Transitions return a new Session and leave the
// receiver untouched.
//
//	Unresolved → Eligible → InProgress(i) → Finalizing → Completed
//	Unresolved | Eligible → Rejected(reason)
type Session struct {
	StudentID  uuid.UUID
	Descriptor model.SessionDescriptor
	State      SessionState
	Index      int
	Answers    model.AnswerSet
	Reason     error
}

// Reject moves an unresolved or eligible session to Rejected.
func (s Session) Reject(reason error) Session {
	if s.State != StateUnresolved && s.State != StateEligible {
		return s
	}
	s.State = StateRejected
	s.Reason = reason
	return s
}

// Eligible returns a session that passed every eligibility check.
func Eligible(studentID uuid.UUID, d model.SessionDescriptor) Session {
	return Session{
		StudentID:  studentID,
		Descriptor: d,
		State:      StateEligible,
		Answers:    model.AnswerSet{},
	}
}

// Resume places an eligible session at the first unanswered question. The
// answers must cover exactly a prefix of the question order.
func (s Session) Resume(answers model.AnswerSet) (Session, error) {
	if s.State != StateEligible {
		return s, fmt.Errorf("resume from %s", s.State)
	}

	questions := s.Descriptor.Questions
	k := len(answers)
	if k > len(questions) {
		return s, newValidationError("answers", "more answers than questions")
	}
	for i := 0; i < k; i++ {
		if _, ok := answers[questions[i].ID.String()]; !ok {
			return s, newValidationError("answers", "answers must cover the questions already shown, in order")
		}
	}

	s.Answers = maps.Clone(answers)
	if s.Answers == nil {
		s.Answers = model.AnswerSet{}
	}
	s.Index = k
	s.State = StateInProgress
	if k == len(questions) {
		s.State = StateFinalizing
	}
	return s, nil
}

// Current returns the question awaiting an answer.
func (s Session) Current() (model.QuestionForStudent, bool) {
	if s.State != StateInProgress || s.Index >= len(s.Descriptor.Questions) {
		return model.QuestionForStudent{}, false
	}
	return s.Descriptor.Questions[s.Index], true
}

// Advance records the answer for question index and moves on. selected may be
// nil for a timeout. elapsed is clamped to the question limit and defaults to
// the limit when absent.
func (s Session) Advance(index int, selected, elapsed *int) (Session, error) {
	q, ok := s.Current()
	if !ok {
		return s, newValidationError("question_index", "no question is awaiting an answer")
	}
	if index != s.Index {
		return s, newValidationError("question_index", fmt.Sprintf("expected question %d", s.Index))
	}
	if selected != nil && (*selected < 0 || *selected >= len(q.Options)) {
		return s, newValidationError("selected_index", "must select one of the question options")
	}

	taken := ClampTimeTaken(elapsed, q.TimeSeconds)
	answer := model.Answer{TimeTaken: &taken}
	if selected != nil {
		idx := *selected
		answer.SelectedIndex = &idx
	}

	s.Answers = maps.Clone(s.Answers)
	if s.Answers == nil {
		s.Answers = model.AnswerSet{}
	}
	s.Answers[q.ID.String()] = answer
	s.Index++
	if s.Index >= len(s.Descriptor.Questions) {
		s.State = StateFinalizing
	}
	return s, nil
}

// Complete marks a finalizing session as persisted.
func (s Session) Complete() (Session, error) {
	if s.State != StateFinalizing {
		return s, fmt.Errorf("complete from %s", s.State)
	}
	s.State = StateCompleted
	return s, nil
}
