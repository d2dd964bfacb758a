package model

import (
	"github.com/google/uuid"
)

// Question is a single multiple-choice question with its own time limit.
type Question struct {
	ID           uuid.UUID `json:"id"`
	QuizID       uuid.UUID `json:"quiz_id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	TimeSeconds  int       `json:"time_seconds"`
	OrderNum     int       `json:"order_num"`
}

// QuestionForStudent is the question as presented during a session.
type QuestionForStudent struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	TimeSeconds  int       `json:"time_seconds"`
}

// ForStudent strips the correct index.
func (q Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		TimeSeconds:  q.TimeSeconds,
	}
}

// UploadQuestionInput accepts both correctIndex and correctAnswer forms.
type UploadQuestionInput struct {
	Question      string   `json:"question" yaml:"question" binding:"required,max=2000"`
	Options       []string `json:"options" yaml:"options" binding:"required,min=2,dive,required"`
	CorrectIndex  *int     `json:"correctIndex" yaml:"correctIndex"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Time          int      `json:"time" yaml:"time"`
}
