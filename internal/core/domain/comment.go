package domain

import (
	"context"
	"strings"
	"time"
)

// Comment is the projection returned by comment writes.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentView is the projection returned by comment listings. Author is the
// author's display name, empty when the author row is gone.
type CommentView struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentRequest is the payload of comment create and update.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=2,max=500"`
}

func (r *CommentRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

// CommentRepository defines the data-access contract for comments.
// Update and Delete match on the comment id, its post and its author, so a
// comment owned by someone else or under another post is indistinguishable
// from a missing one.
type CommentRepository interface {
	// ListByPost returns comments of a post, newest first.
	ListByPost(ctx context.Context, postID int64, limit, offset int) ([]CommentView, error)

	// Create returns ErrMissingReference when the post or author does not exist.
	Create(ctx context.Context, postID, authorID int64, content string) (*Comment, error)

	// Update returns (nil, nil) when no comment matches id, post and author.
	Update(ctx context.Context, id, postID, authorID int64, content string) (*Comment, error)

	// Delete returns (nil, nil) when no comment matches id, post and author.
	Delete(ctx context.Context, id, postID, authorID int64) (*Comment, error)
}
