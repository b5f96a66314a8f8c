package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/server/merge"
)

// NewRouter builds the gin engine: probes and metrics at the root, the REST
// API under /api/v1. Everything but register and login requires a bearer
// token.
func NewRouter(d Deps) *gin.Engine {
	h := NewHandler(d)

	r := gin.New()
	r.Use(RequestID(), h.Recovery(), h.AccessLog())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/healthz", h.healthz)
	r.GET("/readyz", h.readyz)
	r.NoRoute(func(c *gin.Context) {
		h.fail(c, http.StatusNotFound, "Resource not found", nil)
	})

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", h.RequireAuth(), h.me)
	authGroup.POST("/logout", h.RequireAuth(), h.logout)

	api := v1.Group("", h.RequireAuth())

	users := api.Group("/users")
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.DELETE("", h.deleteAllUsers)
	users.GET("/:id", h.getUser)
	users.PUT("/:id", h.updateUser(merge.FullReplace))
	users.PATCH("/:id", h.updateUser(merge.PartialMerge))
	users.DELETE("/:id", h.deleteUser)
	users.GET("/:id/claims", h.listUserClaims)

	claims := api.Group("/claims")
	claims.GET("", h.listClaims)
	claims.POST("", h.createClaim)
	claims.DELETE("", h.deleteAllClaims)
	claims.GET("/stats", h.claimStats)
	claims.GET("/stream", h.streamClaims)
	claims.GET("/:id", h.getClaim)
	claims.PUT("/:id", h.updateClaim(merge.FullReplace))
	claims.PATCH("/:id", h.updateClaim(merge.PartialMerge))
	claims.DELETE("/:id", h.deleteClaim)
	claims.GET("/:id/images", h.listClaimImages)

	images := api.Group("/images")
	images.GET("", h.listImages)
	images.POST("", h.createImage)
	images.DELETE("", h.deleteAllImages)
	images.POST("/presign", h.presignImage)
	images.GET("/:id", h.getImage)
	images.PUT("/:id", h.updateImage(merge.FullReplace))
	images.PATCH("/:id", h.updateImage(merge.PartialMerge))
	images.DELETE("/:id", h.deleteImage)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) readyz(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			h.log.Warn(c.Request.Context(), "readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
