package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/middleware"
)

// ListComments handles GET /api/posts/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	ctx, span := startWebSpan(c, "comments.list")
	defer span.End()

	postID, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	page, limit, err := pageQuery(c)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	comments, err := h.comments.ListByPost(ctx, postID, page, limit)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Comments retrieved successfully",
		"comments": comments,
		"count":    len(comments),
	})
}

// CreateComment handles POST /api/posts/:id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	ctx, span := startWebSpan(c, "comments.create")
	defer span.End()

	postID, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	var req domain.CommentRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	comment, err := h.comments.Create(ctx, postID, claims.ID, req.Content)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment created successfully", "comment": comment})
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId. Only the
// author matches, and only under the post it was written on; anything
// else gets 404.
func (h *Handler) UpdateComment(c *gin.Context) {
	ctx, span := startWebSpan(c, "comments.update")
	defer span.End()

	postID, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	commentID, ok := idParam(c, "commentId", "comment")
	if !ok {
		return
	}
	var req domain.CommentRequest
	if !bindAndValidate(c, span, &req) {
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	comment, err := h.comments.Update(ctx, postID, commentID, claims.ID, req.Content)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully", "comment": comment})
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId.
func (h *Handler) DeleteComment(c *gin.Context) {
	ctx, span := startWebSpan(c, "comments.delete")
	defer span.End()

	postID, ok := idParam(c, "id", "post")
	if !ok {
		return
	}
	commentID, ok := idParam(c, "commentId", "comment")
	if !ok {
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	if err := h.comments.Delete(ctx, postID, commentID, claims.ID); err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
