package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/repository"
	"github.com/stemsi/quizlink-backend/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	mr       *miniredis.Miniredis
	payloads *repository.PayloadCache
	serveLog *repository.ServeLog
	sessions *QuizSessionService
	register *RegistrationService
	admin    *QuizAdminService
	clock    *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := zerolog.Nop()
	store := memory.NewStore()
	payloads := repository.NewPayloadCache(rdb, store, time.Minute, log)
	serveLog := repository.NewServeLog(rdb, time.Hour)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	sessions := NewQuizSessionService(store, store, store, payloads, serveLog, true, log)
	sessions.now = clock.Now

	admin := NewQuizAdminService(store, payloads, 30, log)
	admin.now = clock.Now

	return &fixture{
		store:    store,
		mr:       mr,
		payloads: payloads,
		serveLog: serveLog,
		sessions: sessions,
		register: NewRegistrationService(store, log),
		admin:    admin,
		clock:    clock,
	}
}

func intPtr(v int) *int { return &v }

// seedQuiz uploads a two-question quiz: 30s with answer index 2, 20s with answer index 1.
func (f *fixture) seedQuiz(t *testing.T) (*model.UploadQuestionsResponse, []model.Question) {
	t.Helper()
	ctx := context.Background()
	resp, err := f.admin.Upload(ctx, model.UploadQuestionsRequest{
		Title: "General Knowledge",
		Questions: []model.UploadQuestionInput{
			{Question: "Largest planet?", Options: []string{"Mars", "Venus", "Jupiter", "Earth"}, CorrectIndex: intPtr(2), Time: 30},
			{Question: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Time: 20},
		},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	questions, err := f.store.ListQuestions(ctx, resp.QuizID)
	if err != nil || len(questions) != 2 {
		t.Fatalf("list questions: %v (%d)", err, len(questions))
	}
	return resp, questions
}

func (f *fixture) seedStudent(t *testing.T, email string) string {
	t.Helper()
	resp, err := f.register.Register(context.Background(), model.RegisterStudentRequest{
		Name:            "Asha Rao",
		Email:           email,
		Phone:           "9876543210",
		InstitutionType: model.InstitutionCollege,
		InstitutionName: "City Engineering College",
		Course:          "B.Tech",
		Branch:          "Computer Science",
		Semester:        "5",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp.Token
}
