package model

import "github.com/google/uuid"

// SessionDescriptor is returned by resolve. Immutable for the session.
type SessionDescriptor struct {
	Student   StudentSummary       `json:"student"`
	Quiz      QuizSummary          `json:"quiz"`
	Questions []QuestionForStudent `json:"questions"`
}

// AdvanceQuizRequest records the answer to the current question.
type AdvanceQuizRequest struct {
	QuizID         uuid.UUID `json:"quiz_id" binding:"required"`
	QuestionIndex  *int      `json:"question_index" binding:"required,min=0"`
	SelectedIndex  *int      `json:"selected_index" binding:"omitempty,min=0"`
	ElapsedSeconds *int      `json:"elapsed_seconds"`
	Answers        AnswerSet `json:"answers"`
}

// AdvanceQuizResponse carries the next step of a session.
type AdvanceQuizResponse struct {
	State         string              `json:"state"`
	QuestionIndex int                 `json:"question_index"`
	Question      *QuestionForStudent `json:"question,omitempty"`
	Answers       AnswerSet           `json:"answers"`
}
