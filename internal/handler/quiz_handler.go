package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/response"
	"github.com/stemsi/quizlink-backend/internal/service"
	"github.com/stemsi/quizlink-backend/internal/validator"
)

// maxTokenLength bounds the path token before any store lookup.
const maxTokenLength = 64

// QuizHandler handles the student-facing quiz endpoints.
type QuizHandler struct {
	sessionService      *service.QuizSessionService
	registrationService *service.RegistrationService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	sessionService *service.QuizSessionService,
	registrationService *service.RegistrationService,
) *QuizHandler {
	return &QuizHandler{
		sessionService:      sessionService,
		registrationService: registrationService,
	}
}

// Resolve godoc
// GET /api/v1/quiz/:token
// Returns the student, the quiz and its questions without answers.
func (h *QuizHandler) Resolve(c *gin.Context) {
	token, ok := pathToken(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrInvalidLink)
		return
	}

	descriptor, err := h.sessionService.Resolve(c.Request.Context(), token)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, descriptor)
}

// Advance godoc
// POST /api/v1/quiz/:token/advance
// Records the answer to the current question and returns the next one.
func (h *QuizHandler) Advance(c *gin.Context) {
	token, ok := pathToken(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrInvalidLink)
		return
	}

	var req model.AdvanceQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	step, err := h.sessionService.Advance(c.Request.Context(), token, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, step)
}

// Register godoc
// POST /api/v1/quiz/register
// Self-registration. Returns the existing token when the email is known.
func (h *QuizHandler) Register(c *gin.Context) {
	var req model.RegisterStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.registrationService.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, resp)
}

// Submit godoc
// POST /api/v1/quiz/submit
// Scores the answers and stores the student's only submission.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.sessionService.Submit(c.Request.Context(), strings.TrimSpace(req.Token), req.Answers)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func pathToken(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" || len(token) > maxTokenLength {
		return "", false
	}
	return token, true
}
