package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlink-backend/internal/model"
	"github.com/stemsi/quizlink-backend/internal/response"
	"github.com/stemsi/quizlink-backend/internal/service"
	"github.com/stemsi/quizlink-backend/internal/validator"
)

// AdminHandler handles the admin surface: login, quiz control, roster and exports.
type AdminHandler struct {
	authService   *service.AuthService
	quizService   *service.QuizAdminService
	rosterService *service.RosterService
	exportService *service.ExportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	authService *service.AuthService,
	quizService *service.QuizAdminService,
	rosterService *service.RosterService,
	exportService *service.ExportService,
) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		quizService:   quizService,
		rosterService: rosterService,
		exportService: exportService,
	}
}

// Login godoc
// POST /api/v1/admin/login
// Exchanges the admin password for a bearer token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.Login(req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// UploadQuestions godoc
// POST /api/v1/admin/questions
// Creates a quiz from the uploaded questions and makes it current.
func (h *AdminHandler) UploadQuestions(c *gin.Context) {
	var req model.UploadQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.quizService.Upload(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// QuizStatus godoc
// GET /api/v1/admin/quiz-status
func (h *AdminHandler) QuizStatus(c *gin.Context) {
	status, err := h.quizService.Status(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// ToggleQuiz godoc
// POST /api/v1/admin/toggle-quiz
// Enables or disables a quiz for new sessions.
func (h *AdminHandler) ToggleQuiz(c *gin.Context) {
	var req model.ToggleQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.quizService.Toggle(c.Request.Context(), req.ID, *req.IsActive); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": req.ID, "is_active": *req.IsActive})
}

// DeleteQuiz godoc
// DELETE /api/v1/admin/quiz
// Removes every quiz and question. Students and submissions are kept.
func (h *AdminHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(c.Request.Context()); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// Reset godoc
// DELETE /api/v1/admin/reset
// Removes every quiz, student and submission.
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.quizService.Reset(c.Request.Context()); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "All data reset"})
}

// ImportStudents godoc
// POST /api/v1/admin/students
// Imports a CSV roster and returns each student's link.
func (h *AdminHandler) ImportStudents(c *gin.Context) {
	var req model.ImportStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.rosterService.Import(c.Request.Context(), strings.NewReader(req.CSVContent))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListStudents godoc
// GET /api/v1/admin/students
// Lists students with submission status and quiz link.
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.rosterService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// DeleteStudents godoc
// DELETE /api/v1/admin/students
func (h *AdminHandler) DeleteStudents(c *gin.Context) {
	var req model.DeleteStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	n, err := h.rosterService.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": n})
}

// ExportResults godoc
// GET /api/v1/admin/export
// Downloads results.csv.
func (h *AdminHandler) ExportResults(c *gin.Context) {
	ctx := c.Request.Context()
	err := response.CSV(c, "results.csv", func(w io.Writer) error {
		return h.exportService.WriteResultsCSV(ctx, w)
	})
	if err != nil {
		_ = c.Error(err)
	}
}

// ExportLinks godoc
// GET /api/v1/admin/export-links
// Downloads student_links.csv.
func (h *AdminHandler) ExportLinks(c *gin.Context) {
	ctx := c.Request.Context()
	err := response.CSV(c, "student_links.csv", func(w io.Writer) error {
		return h.rosterService.WriteLinksCSV(ctx, w)
	})
	if err != nil {
		_ = c.Error(err)
	}
}
