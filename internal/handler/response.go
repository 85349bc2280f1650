package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/middleware"
	"fleet/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal errors are not echoed to the client.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	code := mapKindToHTTPStatus(kind)
	if kind == service.KindInternal {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal server error", Kind: kind.String()})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error(), Kind: kind.String()})
}

// respondBadRequest reports a malformed request body or query.
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), Kind: service.KindInvalidInput.String()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func mapKindToHTTPStatus(kind service.Kind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// caller returns the authenticated identity. Routes are mounted behind
// middleware.Authenticate, so a missing identity yields the zero value.
func caller(c *gin.Context) domain.Identity {
	identity, _ := middleware.IdentityFrom(c)
	return identity
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
