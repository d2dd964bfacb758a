package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is a titled question set. Only the quiz referenced by the
// active pointer can start new sessions.
type Quiz struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizSummary is the quiz identity exposed to the quiz taker.
type QuizSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// QuizPayload is the cached, student-facing form of a quiz.
// It never carries correct indices.
type QuizPayload struct {
	QuizID    uuid.UUID            `json:"quiz_id"`
	Title     string               `json:"title"`
	Questions []QuestionForStudent `json:"questions"`
}

// QuizStatus answers the admin "is there a quiz" question.
type QuizStatus struct {
	Available bool       `json:"available"`
	ID        *uuid.UUID `json:"id"`
	Title     string     `json:"title,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// ToggleQuizRequest enables or disables a quiz.
type ToggleQuizRequest struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	IsActive *bool     `json:"is_active" binding:"required"`
}

// UploadQuestionsRequest creates a new quiz and makes it current.
type UploadQuestionsRequest struct {
	Title     string                `json:"title" yaml:"title" binding:"max=255"`
	Questions []UploadQuestionInput `json:"questions" yaml:"questions" binding:"required,min=1,dive"`
}

// UploadQuestionsResponse is returned after a successful upload.
type UploadQuestionsResponse struct {
	QuizID        uuid.UUID `json:"quiz_id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
}
