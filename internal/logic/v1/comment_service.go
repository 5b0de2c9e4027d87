package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/content-service/internal/core/domain"
)

// CommentService implements comment management. Update and delete only
// match comments written by the requester under the given post.
type CommentService struct {
	comments domain.CommentRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments domain.CommentRepository) *CommentService {
	return &CommentService{comments: comments}
}

// ListByPost returns a page of comments on postID, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64, page, limit int) ([]domain.CommentView, error) {
	ctx, span := startLogicSpan(ctx, "comments.list", attribute.Int64("post.id", postID))
	defer span.End()

	limit, offset, err := pageWindow(page, limit)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, postID, authorID int64, content string) (*domain.Comment, error) {
	ctx, span := startLogicSpan(ctx, "comments.create", attribute.Int64("post.id", postID))
	defer span.End()

	comment, err := s.comments.Create(ctx, postID, authorID, content)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrMissingReference) {
			return nil, fmt.Errorf("comment on post %d: %w", postID, ErrPostNotFound)
		}
		return nil, fmt.Errorf("comment on post %d: %w", postID, err)
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, postID, commentID, authorID int64, content string) (*domain.Comment, error) {
	ctx, span := startLogicSpan(ctx, "comments.update", attribute.Int64("comment.id", commentID))
	defer span.End()

	comment, err := s.comments.Update(ctx, commentID, postID, authorID, content)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	if comment == nil {
		return nil, fmt.Errorf("update comment %d: %w", commentID, ErrCommentNotFound)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, postID, commentID, authorID int64) error {
	ctx, span := startLogicSpan(ctx, "comments.delete", attribute.Int64("comment.id", commentID))
	defer span.End()

	comment, err := s.comments.Delete(ctx, commentID, postID, authorID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	if comment == nil {
		return fmt.Errorf("delete comment %d: %w", commentID, ErrCommentNotFound)
	}
	return nil
}
