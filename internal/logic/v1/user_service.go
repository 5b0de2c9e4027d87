package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/content-service/internal/auth"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/events"
	"github.com/duynhne/content-service/middleware"
)

// UserService implements user management.
type UserService struct {
	users  domain.UserRepository
	hasher *auth.Hasher
	events events.Publisher
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, hasher *auth.Hasher, publisher events.Publisher) *UserService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &UserService{users: users, hasher: hasher, events: publisher}
}

func (s *UserService) List(ctx context.Context) ([]domain.PublicUser, error) {
	ctx, span := startLogicSpan(ctx, "users.list")
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.PublicUser, error) {
	ctx, span := startLogicSpan(ctx, "users.get", attribute.Int64("user.id", id))
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
	}
	return user, nil
}

// Create inserts a user with a hashed password.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.PublicUser, error) {
	ctx, span := startLogicSpan(ctx, "users.create", attribute.String("email", req.Email))
	defer span.End()

	user, err := createUser(ctx, s.users, s.hasher, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create user %q: %w", req.Email, err)
	}
	s.events.Publish(ctx, events.UserCreated, strconv.FormatInt(user.ID, 10), user)
	return user, nil
}

// Update applies a partial update; at least one field must be present.
func (s *UserService) Update(ctx context.Context, id int64, req domain.UpdateUserRequest) (*domain.PublicUser, error) {
	ctx, span := startLogicSpan(ctx, "users.update", attribute.Int64("user.id", id))
	defer span.End()

	if req.Empty() {
		return nil, fmt.Errorf("update user %d: %w", id, ErrNothingToUpdate)
	}

	user, err := s.users.Update(ctx, id, domain.UserChanges{Name: req.Name, Email: req.Email, Role: req.Role})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("update user %d: %w", id, ErrEmailExists)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("update user %d: %w", id, ErrUserNotFound)
	}
	return user, nil
}

// Delete removes a user; posts and comments cascade in storage.
func (s *UserService) Delete(ctx context.Context, id int64) (*domain.DeletedUser, error) {
	ctx, span := startLogicSpan(ctx, "users.delete", attribute.Int64("user.id", id))
	defer span.End()

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}
	if deleted == nil {
		return nil, fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	s.events.Publish(ctx, events.UserDeleted, strconv.FormatInt(id, 10), deleted)
	return deleted, nil
}

func startLogicSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String("layer", "logic")}, attrs...)
	return middleware.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
