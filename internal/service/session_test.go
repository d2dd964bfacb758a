package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/quizlink-backend/internal/model"
)

func testDescriptor(n int) model.SessionDescriptor {
	d := model.SessionDescriptor{Quiz: model.QuizSummary{ID: uuid.New(), Title: "Quiz"}}
	for i := 0; i < n; i++ {
		d.Questions = append(d.Questions, model.QuestionForStudent{
			ID:           uuid.New(),
			QuestionText: "Q",
			Options:      []string{"a", "b", "c"},
			TimeSeconds:  30,
		})
	}
	return d
}

func TestSession_Walkthrough(t *testing.T) {
	d := testDescriptor(2)
	sess, err := Eligible(uuid.New(), d).Resume(nil)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if sess.State != StateInProgress || sess.Index != 0 {
		t.Fatalf("state = %s/%d, want in_progress/0", sess.State, sess.Index)
	}

	next, err := sess.Advance(0, intPtr(2), intPtr(4))
	if err != nil {
		t.Fatalf("advance 0: %v", err)
	}
	if len(sess.Answers) != 0 {
		t.Error("advance mutated the receiver's answers")
	}
	if next.State != StateInProgress || next.Index != 1 {
		t.Fatalf("state = %s/%d, want in_progress/1", next.State, next.Index)
	}

	last, err := next.Advance(1, nil, intPtr(500))
	if err != nil {
		t.Fatalf("advance 1: %v", err)
	}
	if last.State != StateFinalizing {
		t.Fatalf("state = %s, want finalizing", last.State)
	}
	a := last.Answers[d.Questions[1].ID.String()]
	if a.SelectedIndex != nil {
		t.Error("timed-out answer should have no selection")
	}
	if a.TimeTaken == nil || *a.TimeTaken != 30 {
		t.Errorf("time taken = %v, want clamped to 30", a.TimeTaken)
	}

	done, err := last.Complete()
	if err != nil || done.State != StateCompleted {
		t.Fatalf("complete: %v (%s)", err, done.State)
	}
	if _, err := done.Complete(); err == nil {
		t.Error("second complete should fail")
	}
}

func TestSession_AdvanceRejectsWrongIndex(t *testing.T) {
	sess, _ := Eligible(uuid.New(), testDescriptor(2)).Resume(nil)
	if _, err := sess.Advance(1, intPtr(0), nil); !errors.Is(err, ErrValidation) {
		t.Errorf("skip ahead: got %v, want ErrValidation", err)
	}
	if _, err := sess.Advance(0, intPtr(3), nil); !errors.Is(err, ErrValidation) {
		t.Errorf("out of range option: got %v, want ErrValidation", err)
	}
}

func TestSession_ResumeRequiresPrefix(t *testing.T) {
	d := testDescriptor(3)
	eligible := Eligible(uuid.New(), d)

	gap := model.AnswerSet{d.Questions[1].ID.String(): {}}
	if _, err := eligible.Resume(gap); !errors.Is(err, ErrValidation) {
		t.Errorf("gap: got %v, want ErrValidation", err)
	}

	prefix := model.AnswerSet{d.Questions[0].ID.String(): {}}
	sess, err := eligible.Resume(prefix)
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if q, ok := sess.Current(); !ok || q.ID != d.Questions[1].ID {
		t.Errorf("current = %v, want second question", q.ID)
	}
}

func TestSession_EmptyQuizFinalizesImmediately(t *testing.T) {
	sess, err := Eligible(uuid.New(), testDescriptor(0)).Resume(nil)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if sess.State != StateFinalizing {
		t.Errorf("state = %s, want finalizing", sess.State)
	}
	if _, ok := sess.Current(); ok {
		t.Error("empty quiz should have no current question")
	}
}

func TestSession_Reject(t *testing.T) {
	s := Session{State: StateUnresolved}.Reject(ErrNotFound)
	if s.State != StateRejected || !errors.Is(s.Reason, ErrNotFound) {
		t.Errorf("got %s/%v", s.State, s.Reason)
	}

	done := Session{State: StateCompleted}.Reject(ErrNotFound)
	if done.State != StateCompleted {
		t.Errorf("completed session moved to %s", done.State)
	}
}
