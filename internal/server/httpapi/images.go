package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
)

type presignRequest struct {
	ClaimID int64 `json:"claimId" binding:"required,min=1"`
}

func (h *Handler) listImages(c *gin.Context) {
	out, err := h.images.List(c.Request.Context())
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Images retrieved successfully", out)
}

func (h *Handler) getImage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	v, err := h.images.Get(c.Request.Context(), id)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, v.Version)
	h.ok(c, "Image retrieved successfully", v)
}

func (h *Handler) createImage(c *gin.Context) {
	var in models.ImageInput
	if err := bind(c, &in); err != nil {
		h.fromError(c, err)
		return
	}
	v, err := h.images.Create(c.Request.Context(), in)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, v.Version)
	h.created(c, "Image created successfully", v)
}

func (h *Handler) updateImage(st merge.Strategy) gin.HandlerFunc {
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
		var in models.ImageInput
		if err := bind(c, &in); err != nil {
			h.fromError(c, err)
			return
		}
		v, err := h.images.Update(c.Request.Context(), currentUser(c), id, in, st, ver)
		if err != nil {
			h.fromError(c, err)
			return
		}
		setETag(c, v.Version)
		h.ok(c, "Image updated successfully", v)
	}
}

func (h *Handler) deleteImage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	if err := h.images.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}

func (h *Handler) deleteAllImages(c *gin.Context) {
	if _, err := h.images.DeleteAll(c.Request.Context()); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}

func (h *Handler) presignImage(c *gin.Context) {
	var req presignRequest
	if err := bind(c, &req); err != nil {
		h.fromError(c, err)
		return
	}
	up, err := h.images.PresignUpload(c.Request.Context(), req.ClaimID)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.created(c, "Upload URL created successfully", up)
}
