package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/oklog/ulid/v2"
)

const (
	ctxRequestID = "request_id"
	ctxUser      = "user"

	// tokenQueryParam carries the bearer token where headers cannot be set,
	// e.g. a browser opening the event stream.
	tokenQueryParam = "access_token"
)

// RequestID tags each request with a ULID unless the caller sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(common.RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// AccessLog writes one line per request once the response is done.
func (h *Handler) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID(c),
			"remote", c.ClientIP(),
		)
	}
}

// Recovery turns a handler panic into a 500 envelope.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		h.log.Error(c.Request.Context(), "panic in handler", "panic", rec, "request_id", requestID(c))
		h.fail(c, http.StatusInternalServerError, "Internal server error", nil)
	})
}

// RequireAuth resolves the bearer token to an account and stores it on the
// context. Missing or rejected tokens stop the chain with 401.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			h.fromError(c, common.Unauthorized("httpapi.RequireAuth"))
			return
		}
		u, err := h.auth.CurrentIdentity(c.Request.Context(), token)
		if err != nil {
			h.fromError(c, err)
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(common.AuthorizationHeader)
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.Query(tokenQueryParam)
}

// currentUser is the account set by RequireAuth, or nil on public routes.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
