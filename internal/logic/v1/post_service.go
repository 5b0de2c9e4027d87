package v1

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/events"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// PostService implements post management. Role checks happen in the access
// middleware before these methods run.
type PostService struct {
	posts  domain.PostRepository
	events events.Publisher
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &PostService{posts: posts, events: publisher}
}

// List returns at most limit posts, skipping (page-1)*limit.
func (s *PostService) List(ctx context.Context, page, limit int) ([]domain.Post, error) {
	ctx, span := startLogicSpan(ctx, "posts.list", attribute.Int("page", page), attribute.Int("limit", limit))
	defer span.End()

	limit, offset, err := pageWindow(page, limit)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	ctx, span := startLogicSpan(ctx, "posts.get", attribute.String("post.slug", slug))
	defer span.End()

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	if post == nil {
		return nil, fmt.Errorf("get post %q: %w", slug, ErrPostNotFound)
	}
	return post, nil
}

// Create inserts a post owned by userID. A missing slug is derived from the title.
func (s *PostService) Create(ctx context.Context, userID int64, req domain.CreatePostRequest) (*domain.Post, error) {
	ctx, span := startLogicSpan(ctx, "posts.create", attribute.Int64("user.id", userID))
	defer span.End()

	slug := req.Slug
	if slug == "" {
		slug = DeriveSlug(req.Title)
	}

	post, err := s.posts.Create(ctx, domain.NewPost{
		UserID:  userID,
		Title:   req.Title,
		Slug:    slug,
		Content: req.Content,
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("create post %q: %w", slug, ErrSlugExists)
		case errors.Is(err, domain.ErrMissingReference):
			return nil, fmt.Errorf("create post %q: %w", slug, ErrUserNotFound)
		}
		return nil, fmt.Errorf("create post %q: %w", slug, err)
	}
	s.events.Publish(ctx, events.PostCreated, strconv.FormatInt(post.ID, 10), post)
	return post, nil
}

// Update applies a partial update; at least one field must be present.
func (s *PostService) Update(ctx context.Context, id int64, req domain.UpdatePostRequest) (*domain.Post, error) {
	ctx, span := startLogicSpan(ctx, "posts.update", attribute.Int64("post.id", id))
	defer span.End()

	if req.Empty() {
		return nil, fmt.Errorf("update post %d: %w", id, ErrNothingToUpdate)
	}

	post, err := s.posts.Update(ctx, id, domain.PostChanges{Title: req.Title, Slug: req.Slug, Content: req.Content})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("update post %d: %w", id, ErrSlugExists)
		}
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	if post == nil {
		return nil, fmt.Errorf("update post %d: %w", id, ErrPostNotFound)
	}
	return post, nil
}

// Delete removes a post; its comments cascade in storage.
func (s *PostService) Delete(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, span := startLogicSpan(ctx, "posts.delete", attribute.Int64("post.id", id))
	defer span.End()

	post, err := s.posts.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("delete post %d: %w", id, err)
	}
	if post == nil {
		return nil, fmt.Errorf("delete post %d: %w", id, ErrPostNotFound)
	}
	s.events.Publish(ctx, events.PostDeleted, strconv.FormatInt(id, 10), post)
	return post, nil
}

// DeriveSlug lowercases title, collapses every run of other characters into
// a dash and appends a short random suffix to keep it unique.
func DeriveSlug(title string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(base) > 180 {
		base = strings.TrimRight(base[:180], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return "post-" + suffix
	}
	return base + "-" + suffix
}
