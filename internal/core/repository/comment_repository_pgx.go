package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/content-service/internal/core/domain"
)

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

// PgxCommentRepository implements domain.CommentRepository using pgxpool.
type PgxCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new PgxCommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) *PgxCommentRepository {
	return &PgxCommentRepository{pool: pool}
}

// ListByPost returns comments of a post with the author name, newest first.
func (r *PgxCommentRepository) ListByPost(ctx context.Context, postID int64, limit, offset int) ([]domain.CommentView, error) {
	query := `
		SELECT c.id, c.post_id, c.content, COALESCE(u.name, ''), c.created_at, c.updated_at
		FROM comments c
		LEFT JOIN users u ON c.author_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.CommentView, 0)
	for rows.Next() {
		var v domain.CommentView
		if err := rows.Scan(&v.ID, &v.PostID, &v.Content, &v.Author, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, v)
	}
	return comments, rows.Err()
}

// Create inserts a comment on postID written by authorID.
func (r *PgxCommentRepository) Create(ctx context.Context, postID, authorID int64, content string) (*domain.Comment, error) {
	query := `INSERT INTO comments (post_id, author_id, content) VALUES ($1, $2, $3)
		RETURNING ` + commentColumns

	c, err := scanComment(r.pool.QueryRow(ctx, query, postID, authorID, content))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// Update rewrites the content of a comment on postID owned by authorID.
func (r *PgxCommentRepository) Update(ctx context.Context, id, postID, authorID int64, content string) (*domain.Comment, error) {
	query := `
		UPDATE comments SET content = $4, updated_at = NOW()
		WHERE id = $1 AND post_id = $2 AND author_id = $3
		RETURNING ` + commentColumns
	return noRows(scanComment(r.pool.QueryRow(ctx, query, id, postID, authorID, content)))
}

// Delete removes a comment on postID owned by authorID.
func (r *PgxCommentRepository) Delete(ctx context.Context, id, postID, authorID int64) (*domain.Comment, error) {
	query := `DELETE FROM comments WHERE id = $1 AND post_id = $2 AND author_id = $3 RETURNING ` + commentColumns
	return noRows(scanComment(r.pool.QueryRow(ctx, query, id, postID, authorID)))
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
