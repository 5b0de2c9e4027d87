package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/middleware"
)

// ListPosts handles GET /api/posts?page=&limit=.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, span := startWebSpan(c, "posts.list")
	defer span.End()

	page, limit, err := pageQuery(c)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	posts, err := h.posts.List(ctx, page, limit)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/posts/:slug.
func (h *Handler) GetPost(c *gin.Context) {
	ctx, span := startWebSpan(c, "posts.get")
	defer span.End()

	post, err := h.posts.GetBySlug(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /api/posts. The post is owned by the caller.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx, span := startWebSpan(c, "posts.create")
	defer span.End()

	claims, _ := middleware.ClaimsFrom(c)

	var req domain.CreatePostRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	post, err := h.posts.Create(ctx, claims.ID, req)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

// UpdatePost handles PUT /api/posts/:id.
func (h *Handler) UpdatePost(c *gin.Context) {
	ctx, span := startWebSpan(c, "posts.update")
	defer span.End()

	id, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	var req domain.UpdatePostRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	post, err := h.posts.Update(ctx, id, req)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

// DeletePost handles DELETE /api/posts/:id. Comments on the post go with it.
func (h *Handler) DeletePost(c *gin.Context) {
	ctx, span := startWebSpan(c, "posts.delete")
	defer span.End()

	id, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	if _, err := h.posts.Delete(ctx, id); err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
