package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
)

func (h *Handler) listClaims(c *gin.Context) {
	out, err := h.claims.List(c.Request.Context())
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Claims retrieved successfully", out)
}

func (h *Handler) claimStats(c *gin.Context) {
	stats, err := h.claims.Stats(c.Request.Context())
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Claim statistics retrieved successfully", stats)
}

func (h *Handler) getClaim(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	v, err := h.claims.Get(c.Request.Context(), id)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, v.Version)
	h.ok(c, "Claim retrieved successfully", v)
}

func (h *Handler) listClaimImages(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	out, err := h.images.ListByClaim(c.Request.Context(), id)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Claim images retrieved successfully", out)
}

func (h *Handler) createClaim(c *gin.Context) {
	var in models.ClaimInput
	if err := bind(c, &in); err != nil {
		h.fromError(c, err)
		return
	}
	v, err := h.claims.Create(c.Request.Context(), in)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, v.Version)
	h.created(c, "Claim created successfully", v)
}

func (h *Handler) updateClaim(st merge.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			h.fromError(c, err)
			return
		}
		ver, err := expectedVersion(c)
		if err != nil {
			h.fromError(c, err)
			return
		}
		var in models.ClaimInput
		if err := bind(c, &in); err != nil {
			h.fromError(c, err)
			return
		}
		v, err := h.claims.Update(c.Request.Context(), currentUser(c), id, in, st, ver)
		if err != nil {
			h.fromError(c, err)
			return
		}
		setETag(c, v.Version)
		h.ok(c, "Claim updated successfully", v)
	}
}

func (h *Handler) deleteClaim(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	if err := h.claims.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}

func (h *Handler) deleteAllClaims(c *gin.Context) {
	if _, err := h.claims.DeleteAll(c.Request.Context()); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}

// streamClaims hands the connection to the WebSocket event stream.
func (h *Handler) streamClaims(c *gin.Context) {
	if h.stream == nil {
		h.fail(c, http.StatusNotFound, "Event stream is not enabled", nil)
		return
	}
	h.stream.ServeHTTP(c.Writer, c.Request)
}
