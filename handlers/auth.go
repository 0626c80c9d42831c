package handlers

import (
	"errors"
	"net/http"

	"pos-api/apperr"
	"pos-api/middleware"
	"pos-api/models"
	"pos-api/services"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userBody(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// Signup creates a STAFF account and signs it in
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.Signup(c.Request.Context(), services.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, "Account created successfully", user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) sendToken(c *gin.Context, status int, msg string, user *models.User) {
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		h.respondError(c, apperr.Store("sign token", err))
		return
	}
	c.JSON(status, gin.H{
		"message": msg,
		"token":   token,
		"user":    userBody(user),
	})
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.GetUserID(c))
	if errors.Is(err, apperr.ErrNotFound) {
		h.respondError(c, apperr.Unauthenticated("account no longer exists"))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userBody(user)})
}
