//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizlink-backend/internal/database"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())

	if err := database.MigrateUp(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)

	students := repository.NewStudentRepository(pool)
	quizzes := repository.NewQuizRepository(pool)
	submissions := repository.NewSubmissionRepository(pool)

	quiz := &model.Quiz{Title: "Integration", IsActive: true}
	questions := []model.Question{
		{QuestionText: "first", Options: []string{"a", "b"}, CorrectIndex: 1, TimeSeconds: 30, OrderNum: 0},
		{QuestionText: "second", Options: []string{"c", "d", "e"}, CorrectIndex: 2, TimeSeconds: 15, OrderNum: 1},
	}
	if err := quizzes.CreateWithQuestions(ctx, quiz, questions); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	t.Run("ActivePointer", func(t *testing.T) {
		active, err := quizzes.GetActive(ctx)
		if err != nil {
			t.Fatalf("get active: %v", err)
		}
		if active.ID != quiz.ID {
			t.Fatalf("active = %s, want %s", active.ID, quiz.ID)
		}
		list, err := quizzes.ListQuestions(ctx, quiz.ID)
		if err != nil || len(list) != 2 || list[1].Options[2] != "e" {
			t.Fatalf("questions = %+v, %v", list, err)
		}
		ids := []uuid.UUID{list[0].ID, list[1].ID, uuid.New()}
		keys, err := quizzes.GetQuestionsByIDs(ctx, quiz.ID, ids)
		if err != nil || len(keys) != 2 {
			t.Fatalf("answer keys = %+v, %v", keys, err)
		}
		if keys, err := quizzes.GetQuestionsByIDs(ctx, uuid.New(), ids); err != nil || len(keys) != 0 {
			t.Fatalf("answer keys for another quiz = %+v, %v", keys, err)
		}
		if err := quizzes.SetActive(ctx, uuid.New(), false); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("set active on unknown quiz: %v", err)
		}
	})

	st := &model.Student{
		Name:            "Integration Student",
		Email:           "int@example.com",
		Phone:           "12345678",
		InstitutionType: model.InstitutionSchool,
		InstitutionName: "School",
		ClassGrade:      "10",
		Token:           uuid.NewString(),
	}
	if err := students.Create(ctx, st); err != nil {
		t.Fatalf("create student: %v", err)
	}

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := *st
		dup.Token = uuid.NewString()
		if err := students.Create(ctx, &dup); !errors.Is(err, repository.ErrDuplicateEmail) {
			t.Fatalf("got %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("SingleSubmission", func(t *testing.T) {
		const n = 6
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			inserted int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := submissions.Insert(ctx, &model.Submission{StudentID: st.ID, Score: 10, Answers: model.AnswerSet{}})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					inserted++
				case errors.Is(err, repository.ErrAlreadySubmitted):
				default:
					t.Errorf("insert: %v", err)
				}
			}()
		}
		wg.Wait()
		if inserted != 1 {
			t.Fatalf("inserted = %d, want 1", inserted)
		}

		done, err := submissions.ExistsForStudent(ctx, st.ID)
		if err != nil || !done {
			t.Fatalf("exists = %v, %v", done, err)
		}
		sub, err := submissions.GetByStudent(ctx, st.ID)
		if err != nil || sub.Score != 10 || len(sub.Answers) != 0 {
			t.Fatalf("stored submission = %+v, %v", sub, err)
		}
		results, err := submissions.ListResults(ctx)
		if err != nil || len(results) != 1 || results[0].Email != st.Email {
			t.Fatalf("results = %+v, %v", results, err)
		}
	})

	t.Run("DeleteQuizKeepsStudents", func(t *testing.T) {
		ids, err := quizzes.DeleteAll(ctx)
		if err != nil || len(ids) != 1 {
			t.Fatalf("delete all = %v, %v", ids, err)
		}
		if _, err := quizzes.GetActive(ctx); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("active after delete: %v", err)
		}
		if _, err := students.GetByToken(ctx, st.Token); err != nil {
			t.Errorf("student removed: %v", err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		if _, err := quizzes.ResetAll(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if _, err := students.GetByToken(ctx, st.Token); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("student after reset: %v", err)
		}
	})
}
