package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
)

var fieldValidator = govalidator.New()

// RegistrationService hands out quiz tokens. One email maps to one student;
// registering again returns the existing token.
type RegistrationService struct {
	students StudentStore
	log      zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(students StudentStore, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		students: students,
		log:      log.With().Str("component", "registration_service").Logger(),
	}
}

// Register validates a self-registration and returns the student's token.
func (s *RegistrationService) Register(ctx context.Context, req model.RegisterStudentRequest) (*model.RegisterStudentResponse, error) {
	st := normalizeRegistration(req)
	if err := validateRegistration(st); err != nil {
		return nil, err
	}

	existing, created, err := s.Ensure(ctx, st)
	if err != nil {
		return nil, err
	}
	if !created {
		s.log.Debug().Str("student_id", existing.ID.String()).Msg("Returning student re-registered")
	}
	return &model.RegisterStudentResponse{Token: existing.Token, Created: created}, nil
}

// Ensure returns the student with st.Email, creating it with a fresh token if
// needed. created reports whether a new row was written.
func (s *RegistrationService) Ensure(ctx context.Context, st model.Student) (*model.Student, bool, error) {
	st.Email = normalizeEmail(st.Email)

	existing, err := s.students.GetByEmail(ctx, st.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("get student by email: %w", err)
	}

	st.Token = NewToken()
	if err := s.students.Create(ctx, &st); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a race with a concurrent registration for the same email.
			existing, err := s.students.GetByEmail(ctx, st.Email)
			if err != nil {
				return nil, false, fmt.Errorf("get student after conflict: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create student: %w", err)
	}

	s.log.Info().
		Str("student_id", st.ID.String()).
		Str("institution_type", string(st.InstitutionType)).
		Msg("Student registered")
	return &st, true, nil
}

// NewToken returns an opaque, unguessable quiz token.
func NewToken() string {
	return uuid.NewString()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRegistration(req model.RegisterStudentRequest) model.Student {
	st := model.Student{
		Name:            strings.TrimSpace(req.Name),
		Email:           normalizeEmail(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		InstitutionType: model.InstitutionType(strings.ToLower(strings.TrimSpace(string(req.InstitutionType)))),
		InstitutionName: strings.TrimSpace(req.InstitutionName),
	}
	switch st.InstitutionType {
	case model.InstitutionSchool:
		st.ClassGrade = strings.TrimSpace(req.ClassGrade)
	case model.InstitutionCollege:
		st.Course = strings.TrimSpace(req.Course)
		st.Branch = strings.TrimSpace(req.Branch)
		st.Semester = strings.TrimSpace(req.Semester)
	}
	return st
}

// validateRegistration repeats the request binding rules on trimmed values so
// whitespace-only fields and non-HTTP callers are caught too.
func validateRegistration(st model.Student) error {
	verr := &ValidationError{}
	required := func(field, v string) {
		if v == "" {
			verr.add(field, field+" is a required field")
		}
	}

	required("name", st.Name)
	required("email", st.Email)
	required("phone", st.Phone)
	required("institution_name", st.InstitutionName)
	if st.Email != "" {
		if err := fieldValidator.Var(st.Email, "email,max=320"); err != nil {
			verr.add("email", "email must be a valid email address")
		}
	}

	switch st.InstitutionType {
	case model.InstitutionSchool:
		required("class_grade", st.ClassGrade)
	case model.InstitutionCollege:
		required("course", st.Course)
		required("branch", st.Branch)
		required("semester", st.Semester)
	default:
		verr.add("institution_type", "institution_type must be one of [school college]")
	}

	return verr.orNil()
}
