package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/model"
)

func newRoster(f *fixture) *RosterService {
	link := func(token string) string { return "https://quiz.example.org/quiz/" + token }
	return NewRosterService(f.store, f.register, link, zerolog.Nop())
}

func TestRosterImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roster := newRoster(f)
	existing := f.seedStudent(t, "asha@example.com")

	input := "\ufeffName, EMAIL ,Phone,Type,Institution,Class\n" +
		"Ravi Kumar,Ravi@Example.com,111,school,Green Valley High,9\n" +
		"Asha Rao,asha@example.com,222,,,\n" +
		",,,,,\n" +
		"No Email,,333,,,\n" +
		"Bad Email,nope,444,,,\n"

	res, err := roster.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Students) != 2 {
		t.Fatalf("students = %d, want 2", len(res.Students))
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %+v, want 2 entries", res.Skipped)
	}
	if res.Skipped[0].Line != 5 || res.Skipped[1].Line != 6 {
		t.Errorf("skipped lines = %d,%d, want 5,6", res.Skipped[0].Line, res.Skipped[1].Line)
	}

	ravi := res.Students[0]
	if !ravi.Created || ravi.Email != "ravi@example.com" {
		t.Errorf("ravi = %+v", ravi)
	}
	if ravi.Link != "https://quiz.example.org/quiz/"+ravi.Token {
		t.Errorf("link = %q", ravi.Link)
	}
	stored, _ := f.store.GetByEmail(ctx, "ravi@example.com")
	if stored.InstitutionType != model.InstitutionSchool || stored.ClassGrade != "9" {
		t.Errorf("stored = %+v", stored)
	}

	asha := res.Students[1]
	if asha.Created || asha.Token != existing {
		t.Errorf("existing student should keep token: %+v", asha)
	}
}

func TestRosterImport_SkipsOversizedCells(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roster := newRoster(f)

	input := "name,email,phone,semester\n" +
		"First Student,first@example.com,111,5\n" +
		strings.Repeat("n", 256) + ",long@example.com,222,5\n" +
		"Long Phone,phone@example.com," + strings.Repeat("9", 33) + ",5\n" +
		"Long Semester,sem@example.com,333," + strings.Repeat("s", 17) + "\n" +
		"Last Student,last@example.com,444,6\n"

	res, err := roster.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Students) != 2 || res.Students[1].Email != "last@example.com" {
		t.Fatalf("students = %+v, want first and last", res.Students)
	}

	want := []model.RosterSkip{
		{Line: 3, Reason: "name exceeds 255 characters"},
		{Line: 4, Reason: "phone exceeds 32 characters"},
		{Line: 5, Reason: "semester exceeds 16 characters"},
	}
	if len(res.Skipped) != len(want) {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	for i, w := range want {
		if res.Skipped[i] != w {
			t.Errorf("skipped[%d] = %+v, want %+v", i, res.Skipped[i], w)
		}
	}
	if _, err := f.store.GetByEmail(ctx, "long@example.com"); err == nil {
		t.Error("oversized row was stored")
	}
}

func TestRosterImport_RequiresHeaderColumns(t *testing.T) {
	f := newFixture(t)
	roster := newRoster(f)

	for name, input := range map[string]string{
		"empty":    "",
		"no email": "name,phone\nRavi,1\n",
		"no name":  "email\nravi@example.com\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := roster.Import(context.Background(), strings.NewReader(input)); !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestRosterListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roster := newRoster(f)
	f.seedQuiz(t)

	done := f.seedStudent(t, "done@example.com")
	f.seedStudent(t, "pending@example.com")
	if _, err := f.sessions.Submit(ctx, done, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	list, err := roster.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}
	statuses := map[string]model.SubmissionStatus{}
	var ids []uuid.UUID
	for _, p := range list {
		statuses[p.Email] = p.Status
		ids = append(ids, p.ID)
		if !strings.HasSuffix(p.Link, p.Token) {
			t.Errorf("link %q does not carry token", p.Link)
		}
	}
	if statuses["done@example.com"] != model.StatusSubmitted || statuses["pending@example.com"] != model.StatusPending {
		t.Errorf("statuses = %v", statuses)
	}

	if _, err := roster.Delete(ctx, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty delete: got %v, want ErrValidation", err)
	}
	n, err := roster.Delete(ctx, ids)
	if err != nil || n != 2 {
		t.Fatalf("delete = %d, %v", n, err)
	}
	if f.store.SubmissionCount() != 0 {
		t.Error("submissions of deleted students should be removed")
	}
}

func TestRosterWriteLinksCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roster := newRoster(f)
	token := f.seedStudent(t, "asha@example.com")

	var buf bytes.Buffer
	if err := roster.WriteLinksCSV(ctx, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if got := strings.Join(records[0], ","); got != "Name,Email,Link" {
		t.Errorf("header = %q", got)
	}
	if records[1][2] != "https://quiz.example.org/quiz/"+token {
		t.Errorf("link = %q", records[1][2])
	}
}
