package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/model"
)

// LinkBuilder turns a token into the link a student opens.
type LinkBuilder func(token string) string

// RosterService imports, lists and removes students on behalf of the admin.
type RosterService struct {
	students     RosterStore
	registration *RegistrationService
	link         LinkBuilder
	log          zerolog.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(students RosterStore, registration *RegistrationService, link LinkBuilder, log zerolog.Logger) *RosterService {
	return &RosterService{
		students:     students,
		registration: registration,
		link:         link,
		log:          log.With().Str("component", "roster_service").Logger(),
	}
}

// rosterColumns maps accepted header spellings to student fields.
var rosterColumns = map[string]string{
	"name":             "name",
	"email":            "email",
	"phone":            "phone",
	"type":             "institution_type",
	"institution_type": "institution_type",
	"institution":      "institution_name",
	"institution_name": "institution_name",
	"class":            "class_grade",
	"class_grade":      "class_grade",
	"course":           "course",
	"branch":           "branch",
	"semester":         "semester",
}

// rosterRow mirrors the students column limits so one oversized cell skips
// its row instead of failing the insert.
type rosterRow struct {
	Name            string `validate:"max=255"`
	Email           string `validate:"email,max=320"`
	Phone           string `validate:"max=32"`
	InstitutionType string `validate:"max=16"`
	InstitutionName string `validate:"max=255"`
	ClassGrade      string `validate:"max=64"`
	Course          string `validate:"max=128"`
	Branch          string `validate:"max=128"`
	Semester        string `validate:"max=16"`
}

func checkRosterRow(st model.Student) string {
	err := fieldValidator.Struct(rosterRow{
		Name:            st.Name,
		Email:           st.Email,
		Phone:           st.Phone,
		InstitutionType: string(st.InstitutionType),
		InstitutionName: st.InstitutionName,
		ClassGrade:      st.ClassGrade,
		Course:          st.Course,
		Branch:          st.Branch,
		Semester:        st.Semester,
	})
	var verrs govalidator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	if fe.Tag() == "email" {
		return "invalid email"
	}
	return fmt.Sprintf("%s exceeds %s characters", field, fe.Param())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Import reads a roster CSV with a header row. Only name and email are
// required; rows missing either, or with a cell longer than its column, are
// reported in Skipped. Students whose email is already registered keep their
// token.
func (s *RosterService) Import(ctx context.Context, r io.Reader) (*model.RosterImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newValidationError("csvContent", "csv is empty")
		}
		return nil, newValidationError("csvContent", fmt.Sprintf("read header: %v", err))
	}

	columns := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := rosterColumns[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, newValidationError("csvContent", "header must contain a name column")
	}
	if _, ok := columns["email"]; !ok {
		return nil, newValidationError("csvContent", "header must contain an email column")
	}

	result := &model.RosterImportResult{
		Students: []model.RosterEntry{},
		Skipped:  []model.RosterSkip{},
	}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, model.RosterSkip{Line: line, Reason: err.Error()})
			continue
		}

		cell := func(field string) string {
			i, ok := columns[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		st := model.Student{
			Name:            cell("name"),
			Email:           normalizeEmail(cell("email")),
			Phone:           cell("phone"),
			InstitutionType: model.InstitutionType(strings.ToLower(cell("institution_type"))),
			InstitutionName: cell("institution_name"),
			ClassGrade:      cell("class_grade"),
			Course:          cell("course"),
			Branch:          cell("branch"),
			Semester:        cell("semester"),
		}
		if st.Name == "" && st.Email == "" {
			continue
		}
		if st.Name == "" || st.Email == "" {
			result.Skipped = append(result.Skipped, model.RosterSkip{Line: line, Reason: "name and email are required"})
			continue
		}
		if reason := checkRosterRow(st); reason != "" {
			result.Skipped = append(result.Skipped, model.RosterSkip{Line: line, Reason: reason})
			continue
		}

		saved, created, err := s.registration.Ensure(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("import line %d: %w", line, err)
		}
		result.Students = append(result.Students, model.RosterEntry{
			ID:      saved.ID,
			Name:    saved.Name,
			Email:   saved.Email,
			Token:   saved.Token,
			Link:    s.link(saved.Token),
			Created: created,
		})
	}

	s.log.Info().
		Int("students", len(result.Students)).
		Int("skipped", len(result.Skipped)).
		Msg("Roster imported")
	return result, nil
}

// List returns every student with submission status and link.
func (s *RosterService) List(ctx context.Context) ([]model.StudentProgress, error) {
	list, err := s.students.ListProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	for i := range list {
		list[i].Link = s.link(list[i].Token)
	}
	if list == nil {
		list = []model.StudentProgress{}
	}
	return list, nil
}

// Delete removes students and their submissions.
func (s *RosterService) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, newValidationError("ids", "ids must contain at least 1 item")
	}
	n, err := s.students.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	s.log.Info().Int64("deleted", n).Msg("Students deleted")
	return n, nil
}

// WriteLinksCSV writes Name,Email,Link for every student.
func (s *RosterService) WriteLinksCSV(ctx context.Context, w io.Writer) error {
	students, err := s.students.List(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Email", "Link"}); err != nil {
		return err
	}
	for _, st := range students {
		if err := cw.Write([]string{st.Name, st.Email, s.link(st.Token)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
