package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/content-service/internal/core/domain"
)

const postColumns = `id, user_id, title, slug, content, created_at, updated_at`

// PgxPostRepository implements domain.PostRepository using pgxpool.
type PgxPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new PgxPostRepository.
func NewPostRepository(pool *pgxpool.Pool) *PgxPostRepository {
	return &PgxPostRepository{pool: pool}
}

// List returns at most limit posts after skipping offset.
func (r *PgxPostRepository) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// GetBySlug returns (nil, nil) when no post matches.
func (r *PgxPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1 LIMIT 1`
	return noRows(scanPost(r.pool.QueryRow(ctx, query, slug)))
}

// Create inserts a post owned by post.UserID.
func (r *PgxPostRepository) Create(ctx context.Context, post domain.NewPost) (*domain.Post, error) {
	query := `INSERT INTO posts (user_id, title, slug, content) VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	p, err := scanPost(r.pool.QueryRow(ctx, query, post.UserID, post.Title, post.Slug, post.Content))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// Update applies the non-nil fields of changes.
func (r *PgxPostRepository) Update(ctx context.Context, id int64, changes domain.PostChanges) (*domain.Post, error) {
	query := `
		UPDATE posts SET
			title = COALESCE($2, title),
			slug = COALESCE($3, slug),
			content = COALESCE($4, content),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postColumns

	p, err := noRows(scanPost(r.pool.QueryRow(ctx, query, id, changes.Title, changes.Slug, changes.Content)))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// Delete removes the post; comments cascade.
func (r *PgxPostRepository) Delete(ctx context.Context, id int64) (*domain.Post, error) {
	query := `DELETE FROM posts WHERE id = $1 RETURNING ` + postColumns
	return noRows(scanPost(r.pool.QueryRow(ctx, query, id)))
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
