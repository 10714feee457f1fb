package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
)

// respondError maps a classified service error to an HTTP response.
// The wrapped cause is never sent to the client.
func respondError(c *gin.Context, err error) {
	status, label := statusFor(domain.KindOf(err))

	c.JSON(status, dto.ErrorResponse{
		Error:   label,
		Message: domain.MessageOf(err),
	})
}

// abortError is respondError for middleware chains
func abortError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}

func statusFor(kind domain.Kind) (int, string) {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized, "Unauthorized"
	case domain.KindForbidden:
		return http.StatusForbidden, "Forbidden"
	case domain.KindNotFound:
		return http.StatusNotFound, "Not found"
	case domain.KindConflict:
		return http.StatusConflict, "Conflict"
	case domain.KindInvalid:
		return http.StatusBadRequest, "Bad request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// bindError reports a request body or form that failed validation
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}
