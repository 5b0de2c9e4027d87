package domain

import (
	"context"
	"strings"
	"time"
)

// Post is the client-facing projection of a post.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPost is the insert payload for a post.
type NewPost struct {
	UserID  int64
	Title   string
	Slug    string
	Content string
}

// PostChanges is a partial update; nil fields keep their stored value.
type PostChanges struct {
	Title   *string
	Slug    *string
	Content *string
}

// CreatePostRequest is the payload of POST /api/posts. Slug is derived from
// the title when omitted.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=10"`
	Slug    string `json:"slug" validate:"omitempty,min=3,max=200,slug"`
}

func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.Slug = strings.TrimSpace(r.Slug)
}

// UpdatePostRequest is the payload of PUT /api/posts/:id.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=200"`
	Content *string `json:"content" validate:"omitempty,min=10"`
	Slug    *string `json:"slug" validate:"omitempty,min=3,max=200,slug"`
}

func (r *UpdatePostRequest) Normalize() {
	trimPtr(r.Title)
	trimPtr(r.Content)
	trimPtr(r.Slug)
}

func (r *UpdatePostRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Slug == nil
}

// PostRepository defines the data-access contract for posts.
type PostRepository interface {
	// List returns at most limit posts after skipping offset, ordered by id.
	List(ctx context.Context, limit, offset int) ([]Post, error)

	// GetBySlug returns (nil, nil) when no post matches.
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// Create inserts a post. Returns ErrConflict on a taken slug and
	// ErrMissingReference when the owner does not exist.
	Create(ctx context.Context, post NewPost) (*Post, error)

	// Update returns (nil, nil) when no post matches.
	Update(ctx context.Context, id int64, changes PostChanges) (*Post, error)

	// Delete removes the post and, by cascade, its comments.
	// Returns (nil, nil) when no post matches.
	Delete(ctx context.Context, id int64) (*Post, error)
}
