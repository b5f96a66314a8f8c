// Package httpapi exposes the services over REST with gin. Every response
// except 204 is wrapped in the same envelope:
//
//	{"success": true, "status": 200, "message": "...", "timestamp": "2024-05-01T12:00:00", "data": ...}
//	{"success": false, "status": 400, "message": "...", "timestamp": "...", "errors": {"field": "msg"}}
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/services"
	"github.com/kinganjia/backend/internal/timex"
)

type envelope struct {
	Success   bool              `json:"success"`
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp timex.Timestamp   `json:"timestamp"`
	Data      any               `json:"data,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func (h *Handler) respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Status:    status,
		Message:   message,
		Timestamp: timex.NewTimestamp(h.now()),
		Data:      data,
	})
}

func (h *Handler) ok(c *gin.Context, message string, data any) {
	h.respond(c, http.StatusOK, message, data)
}

func (h *Handler) created(c *gin.Context, message string, data any) {
	h.respond(c, http.StatusCreated, message, data)
}

func (h *Handler) noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, envelope{
		Success:   false,
		Status:    status,
		Message:   message,
		Timestamp: timex.NewTimestamp(h.now()),
		Errors:    fields,
	})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorDuplicate), errors.Is(err, common.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fromError writes err in the failure envelope. Internal errors are logged
// and never echoed to the client.
func (h *Handler) fromError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed", "error", err, "path", c.FullPath(), "request_id", requestID(c))
		h.fail(c, status, "Internal server error", nil)
		return
	}

	msg := err.Error()
	var fields map[string]string
	if e, ok := common.AsError(err); ok {
		msg = e.Message()
		fields = e.Fields
	}
	h.fail(c, status, msg, fields)
}
