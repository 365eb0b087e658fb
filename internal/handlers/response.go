package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondDomainError maps the service error taxonomy onto HTTP statuses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrMovieNotFound):
		RespondError(c, http.StatusNotFound, "movie_not_found", err)
	case errors.Is(err, apperrors.ErrNoPreferenceData):
		RespondError(c, http.StatusNotFound, "no_preference_data", err)
	case errors.Is(err, apperrors.ErrInvalidQuery):
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
	case errors.Is(err, apperrors.ErrInvalidScope):
		RespondError(c, http.StatusBadRequest, "invalid_scope", err)
	case errors.Is(err, apperrors.ErrMissingUser):
		RespondError(c, http.StatusBadRequest, "missing_user", err)
	case errors.Is(err, apperrors.ErrModelNotReady):
		RespondError(c, http.StatusConflict, "model_not_ready", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
