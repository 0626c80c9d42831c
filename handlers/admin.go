package handlers

import (
	"net/http"

	"pos-api/models"
	"pos-api/services"

	"github.com/gin-gonic/gin"
)

// ListUsers returns staff accounts, optionally filtered by ?role=
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]gin.H, len(users))
	for i := range users {
		out[i] = userBody(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "users": out})
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// CreateUser lets an admin add an account with any role (admin only)
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	role := models.RoleStaff
	if req.Role != "" {
		var err error
		if role, err = models.ParseRole(req.Role); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	user, err := h.users.Create(c.Request.Context(), services.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": userBody(user)})
}

// ResetMenus deletes every menu with all orders and order items (admin only)
func (h *Handler) ResetMenus(c *gin.Context) {
	counts, err := h.catalog.ResetAll(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All menus and orders deleted", "deleted": counts})
}
