package model

import (
	"time"

	"github.com/google/uuid"
)

// InstitutionType distinguishes the two registration paths.
type InstitutionType string

const (
	InstitutionSchool  InstitutionType = "school"
	InstitutionCollege InstitutionType = "college"
)

// Student is a quiz participant. Token is the only credential.
type Student struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	InstitutionType InstitutionType `json:"institution_type"`
	InstitutionName string          `json:"institution_name"`
	ClassGrade      string          `json:"class_grade,omitempty"`
	Course          string          `json:"course,omitempty"`
	Branch          string          `json:"branch,omitempty"`
	Semester        string          `json:"semester,omitempty"`
	Token           string          `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StudentSummary is the identity exposed to the quiz taker.
type StudentSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterStudentRequest is the public self-registration payload.
type RegisterStudentRequest struct {
	Name            string          `json:"name" binding:"required,min=2,max=255"`
	Email           string          `json:"email" binding:"required,email,max=320"`
	Phone           string          `json:"phone" binding:"required,min=6,max=32"`
	InstitutionType InstitutionType `json:"institution_type" binding:"required,oneof=school college"`
	InstitutionName string          `json:"institution_name" binding:"required,max=255"`
	ClassGrade      string          `json:"class_grade" binding:"required_if=InstitutionType school,max=64"`
	Course          string          `json:"course" binding:"required_if=InstitutionType college,max=128"`
	Branch          string          `json:"branch" binding:"required_if=InstitutionType college,max=128"`
	Semester        string          `json:"semester" binding:"required_if=InstitutionType college,max=16"`
}

// RegisterStudentResponse returns the quiz token; Created is false for a returning email.
type RegisterStudentResponse struct {
	Token   string `json:"token"`
	Created bool   `json:"created"`
}

// ImportStudentsRequest carries a roster CSV as text.
type ImportStudentsRequest struct {
	CSVContent string `json:"csvContent" binding:"required"`
}

// DeleteStudentsRequest is the payload for admin bulk delete.
type DeleteStudentsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// RosterEntry is one imported student with its shareable link.
type RosterEntry struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Token   string    `json:"token"`
	Link    string    `json:"link"`
	Created bool      `json:"created"`
}

// RosterSkip reports a CSV row that could not be imported.
type RosterSkip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// RosterImportResult summarizes a roster upload.
type RosterImportResult struct {
	Students []RosterEntry `json:"students"`
	Skipped  []RosterSkip  `json:"skipped"`
}
