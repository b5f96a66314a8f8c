package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
)

func (h *Handler) listUsers(c *gin.Context) {
	out, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Users retrieved successfully", out)
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	v, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, v.Version)
	h.ok(c, "User retrieved successfully", v)
}

func (h *Handler) listUserClaims(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	out, err := h.claims.ListByUser(c.Request.Context(), id)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "User claims retrieved successfully", out)
}

func (h *Handler) createUser(c *gin.Context) {
	var in models.UserInput
	if err := bind(c, &in); err != nil {
		h.fromError(c, err)
		return
	}
	u, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.fromError(c, err)
		return
	}
	setETag(c, u.Version)
	h.created(c, "User created successfully", models.NewUserView(u, nil))
}

func (h *Handler) updateUser(st merge.Strategy) gin.HandlerFunc {
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
		var in models.UserInput
		if err := bind(c, &in); err != nil {
			h.fromError(c, err)
			return
		}
		u, err := h.users.Update(c.Request.Context(), id, in, st, ver)
		if err != nil {
			h.fromError(c, err)
			return
		}
		setETag(c, u.Version)
		h.ok(c, "User updated successfully", models.NewUserView(u, nil))
	}
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fromError(c, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}

func (h *Handler) deleteAllUsers(c *gin.Context) {
	if _, err := h.users.DeleteAll(c.Request.Context()); err != nil {
		h.fromError(c, err)
		return
	}
	h.noContent(c)
}
