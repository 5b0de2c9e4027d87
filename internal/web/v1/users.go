package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/content-service/internal/core/domain"
)

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, span := startWebSpan(c, "users.list")
	defer span.End()

	users, err := h.users.List(ctx)
	if err != nil {
		h.fail(c, span, err, http.StatusConflict)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"users":   users,
		"count":   len(users),
	})
}

// GetUser handles GET /api/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span := startWebSpan(c, "users.get")
	defer span.End()

	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.users.Get(ctx, id)
	if err != nil {
		h.fail(c, span, err, http.StatusConflict)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User retrieved successfully", "user": user})
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(c *gin.Context) {
	ctx, span := startWebSpan(c, "users.create")
	defer span.End()

	var req domain.CreateUserRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	user, err := h.users.Create(ctx, req)
	if err != nil {
		h.fail(c, span, err, http.StatusConflict)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

// UpdateUser handles PUT /api/users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx, span := startWebSpan(c, "users.update")
	defer span.End()

	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	user, err := h.users.Update(ctx, id, req)
	if err != nil {
		h.fail(c, span, err, http.StatusConflict)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// DeleteUser handles DELETE /api/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, span := startWebSpan(c, "users.delete")
	defer span.End()

	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	deleted, err := h.users.Delete(ctx, id)
	if err != nil {
		h.fail(c, span, err, http.StatusConflict)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully", "user": deleted})
}
