package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the authorization role carried by a user and its session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PublicUser is the client-facing projection of a user. It never carries
// the password hash.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	PublicUser
	PasswordHash string `json:"-"`
}

// DeletedUser is returned after a user is removed.
type DeletedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser is the insert payload for a user.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// UserChanges is a partial update; nil fields keep their stored value.
type UserChanges struct {
	Name  *string
	Email *string
	Role  *Role
}

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

// Normalize trims input and applies the default role.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Role == "" {
		r.Role = RoleUser
	}
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Role == "" {
		r.Role = RoleUser
	}
}

// UpdateUserRequest is the payload of PUT /api/users/:id.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

func (r *UpdateUserRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Email)
}

// Empty reports whether the update names no field at all.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Role == nil
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx.
type UserRepository interface {
	// List returns every user ordered by id.
	List(ctx context.Context) ([]PublicUser, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*PublicUser, error)

	// GetByEmail returns the user matching the given email, including the hash.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user. Returns ErrConflict when the email is taken.
	Create(ctx context.Context, user NewUser) (*PublicUser, error)

	// Update applies a partial update. Returns (nil, nil) when no user matches
	// and ErrConflict when the new email is taken.
	Update(ctx context.Context, id int64, changes UserChanges) (*PublicUser, error)

	// Delete removes the user; dependent posts and comments cascade.
	// Returns (nil, nil) when no user matches.
	Delete(ctx context.Context, id int64) (*DeletedUser, error)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
