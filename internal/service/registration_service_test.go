package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stemsi/quizlink-backend/internal/model"
)

func TestRegister_IsIdempotentPerEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.seedStudent(t, "Asha@Example.com ")
	resp, err := f.register.Register(ctx, model.RegisterStudentRequest{
		Name:            "Asha R",
		Email:           "asha@example.com",
		Phone:           "1",
		InstitutionType: model.InstitutionSchool,
		InstitutionName: "Green Valley High",
		ClassGrade:      "10",
	})
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if resp.Token != first {
		t.Errorf("token changed on re-registration")
	}
	if resp.Created {
		t.Error("created should be false for an existing email")
	}

	st, err := f.store.GetByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("email should be stored lowercased: %v", err)
	}
	if st.Name != "Asha Rao" {
		t.Errorf("existing record was overwritten: %q", st.Name)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	valid := model.RegisterStudentRequest{
		Name:            "Ravi",
		Email:           "ravi@example.com",
		Phone:           "12345",
		InstitutionType: model.InstitutionSchool,
		InstitutionName: "Green Valley High",
		ClassGrade:      "9",
	}

	tests := []struct {
		name  string
		edit  func(r *model.RegisterStudentRequest)
		field string
	}{
		{"blank name", func(r *model.RegisterStudentRequest) { r.Name = "   " }, "name"},
		{"bad email", func(r *model.RegisterStudentRequest) { r.Email = "not-an-email" }, "email"},
		{"school without class", func(r *model.RegisterStudentRequest) { r.ClassGrade = "" }, "class_grade"},
		{"college without branch", func(r *model.RegisterStudentRequest) {
			r.InstitutionType = model.InstitutionCollege
			r.Course = "B.Sc"
			r.Semester = "2"
		}, "branch"},
		{"unknown institution type", func(r *model.RegisterStudentRequest) { r.InstitutionType = "university" }, "institution_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, err := f.register.Register(context.Background(), req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("not a *ValidationError: %T", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestRegister_DropsFieldsOfOtherInstitutionType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.register.Register(ctx, model.RegisterStudentRequest{
		Name:            "Meera",
		Email:           "meera@example.com",
		Phone:           "555",
		InstitutionType: model.InstitutionSchool,
		InstitutionName: "Green Valley High",
		ClassGrade:      "8",
		Course:          "B.Tech",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	st, _ := f.store.GetByEmail(ctx, "meera@example.com")
	if st.Course != "" {
		t.Errorf("course = %q, want empty for a school student", st.Course)
	}
}
