package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/content-service/internal/core/domain"
)

const userColumns = `id, name, email, role, created_at, updated_at`

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// List returns every user ordered by id.
func (r *PgxUserRepository) List(ctx context.Context) ([]domain.PublicUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.PublicUser, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return noRows(scanUser(row))
}

// GetByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT ` + userColumns + `, password FROM users WHERE email = $1`

	var row domain.UserRow
	var role string
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&row.ID, &row.Name, &row.Email, &role, &row.CreatedAt, &row.UpdatedAt, &row.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	row.Role = domain.Role(role)

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new user and returns its public projection.
func (r *PgxUserRepository) Create(ctx context.Context, user domain.NewUser) (*domain.PublicUser, error) {
	query := `INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, string(user.Role))
	u, err := scanUser(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Update applies the non-nil fields of changes.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) Update(ctx context.Context, id int64, changes domain.UserChanges) (*domain.PublicUser, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			role = COALESCE($4, role),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var role *string
	if changes.Role != nil {
		s := string(*changes.Role)
		role = &s
	}

	u, err := noRows(scanUser(r.pool.QueryRow(ctx, query, id, changes.Name, changes.Email, role)))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Delete removes the user. Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) Delete(ctx context.Context, id int64) (*domain.DeletedUser, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING id, name, email`

	var d domain.DeletedUser
	err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func scanUser(row pgx.Row) (*domain.PublicUser, error) {
	var u domain.PublicUser
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// noRows turns pgx.ErrNoRows into the (nil, nil) not-found convention.
func noRows[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}
