package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse is returned by register and login.
type authResponse struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	ExpiresIn int64           `json:"expiresIn"`
	User      models.UserView `json:"user"`
}

func (h *Handler) session(s *services.Session) authResponse {
	return authResponse{
		Token:     s.Token.Value,
		Type:      common.BearerScheme,
		ExpiresIn: h.auth.ExpirationWindow(),
		User:      models.NewUserView(s.User, nil),
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		h.fromError(c, err)
		return
	}

	s, err := h.auth.Register(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, "User registered successfully", h.session(s))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		h.fromError(c, err)
		return
	}

	s, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "Login successful", h.session(s))
}

func (h *Handler) me(c *gin.Context) {
	u := currentUser(c)
	v, err := h.users.Get(c.Request.Context(), u.ID)
	if err != nil {
		h.fromError(c, err)
		return
	}
	h.ok(c, "User retrieved successfully", v)
}

func (h *Handler) logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), currentUser(c))
	h.ok(c, "Logout successful", nil)
}
