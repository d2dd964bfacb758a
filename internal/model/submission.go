package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one recorded response. A nil SelectedIndex means the question
// timed out or was skipped; a nil TimeTaken means the full time limit.
type Answer struct {
	SelectedIndex *int `json:"selectedIndex"`
	TimeTaken     *int `json:"timeTaken"`
}

// AnswerSet maps question id to the recorded answer.
type AnswerSet map[string]Answer

// Submission is the single ledger entry for a student.
type Submission struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	Score       int       `json:"score"`
	Answers     AnswerSet `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmitQuizRequest finalizes a session.
type SubmitQuizRequest struct {
	Token   string    `json:"token" binding:"required,max=64"`
	Answers AnswerSet `json:"answers"`
}

// SubmitQuizResponse carries the final score and the attainable maximum.
type SubmitQuizResponse struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// SubmissionStatus is shown in the admin student list.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "Submitted"
	StatusPending   SubmissionStatus = "Pending"
)

// StudentProgress is one row of the admin student list.
type StudentProgress struct {
	Student
	Link        string           `json:"link"`
	Status      SubmissionStatus `json:"status"`
	Score       *int             `json:"score"`
	SubmittedAt *time.Time       `json:"submitted_at"`
}

// ResultRow is one exported result line.
type ResultRow struct {
	Student
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}
