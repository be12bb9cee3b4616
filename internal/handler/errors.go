package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/logger"
	"github.com/sdarshil6/url-shortener/pkg/response"
)

// respondError maps domain errors to HTTP responses. Anything unrecognised
// is logged and reported as a 500 without details.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrCollision):
		response.Conflict(c, "Custom key is already in use")
	case errors.Is(err, domain.ErrEmailTaken):
		response.BadRequest(c, "Email already registered")
	case errors.Is(err, domain.ErrQuotaExceeded):
		response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(c, "Incorrect email or password")
	case errors.Is(err, domain.ErrInvalidExpiration), errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		logger.FromContext(c.Request.Context()).Error("request failed", "error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
