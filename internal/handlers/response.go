package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildshare/blueprint-backend/internal/apperr"
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

// RespondAppError maps the service error taxonomy onto HTTP statuses.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperr.ErrNotOwner):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, apperr.ErrCommentsClosed):
		RespondError(c, http.StatusForbidden, "comments_closed", err)
	case errors.Is(err, apperr.ErrLastVersion):
		RespondError(c, http.StatusConflict, "last_version", err)
	case errors.Is(err, apperr.ErrInvalidClaim):
		RespondError(c, http.StatusConflict, "invalid_claim", err)
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNotVisible):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrAllocationExhausted):
		RespondError(c, http.StatusInternalServerError, "allocation_exhausted", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
