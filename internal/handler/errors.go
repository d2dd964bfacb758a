package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/response"
	"github.com/stemsi/quizlink-backend/internal/service"
)

// writeServiceError maps a service error to its HTTP status and code. Errors
// outside the service taxonomy are logged and reported as 500.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidLink)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrNoActiveQuiz):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveQuiz)
	case errors.Is(err, service.ErrQuizDisabled):
		response.Fail(c, http.StatusForbidden, response.ErrQuizDisabled)
	case errors.Is(err, service.ErrInvalidUser):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidUser)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized)
	case errors.Is(err, service.ErrAdminNotConfigured):
		response.Fail(c, http.StatusInternalServerError, response.ErrAdminNotConfigured)
	case errors.Is(err, service.ErrTokenAuthDisabled):
		response.Fail(c, http.StatusInternalServerError, response.ErrTokenAuthDisabled)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Request deadline exceeded")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrRequestTimeout)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
