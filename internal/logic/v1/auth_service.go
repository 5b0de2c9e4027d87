package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/content-service/internal/auth"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/events"
	"github.com/duynhne/content-service/internal/logger"
	"github.com/duynhne/content-service/middleware"
)

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenService
	events events.Publisher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, hasher *auth.Hasher, tokens *auth.TokenService, publisher events.Publisher) *AuthService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: publisher,
	}
}

// Register creates a user after checking the email is free.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.PublicUser, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register %q: %w", req.Email, ErrEmailExists)
	}

	user, err := createUser(ctx, s.users, s.hasher, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("register %q: %w", req.Email, err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")
	logger.FromContext(ctx).Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User created")
	s.events.Publish(ctx, events.UserCreated, strconv.FormatInt(user.ID, 10), user)

	return user, nil
}

// Authenticate verifies email and password. Unknown email and wrong password
// both return ErrInvalidCredentials after one bcrypt comparison each.
func (s *AuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.PublicUser, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.authenticate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}

	digest := s.dummyDigest()
	if row != nil {
		digest = row.PasswordHash
	}
	ok, err := s.hasher.Verify(req.Password, digest)
	if err != nil && row != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if row == nil || !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		logger.FromContext(ctx).Warn().Str("email", req.Email).Msg("Authentication failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	user := row.PublicUser
	return &user, nil
}

// IssueSession signs a session token for user.
func (s *AuthService) IssueSession(user *domain.PublicUser) (string, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue session for user %d: %w", user.ID, err)
	}
	return token, nil
}

// Logout records who logged out. Sessions are stateless, so nothing is
// revoked; an unreadable token is logged and ignored.
func (s *AuthService) Logout(ctx context.Context, token string) {
	log := logger.FromContext(ctx)
	if token == "" {
		log.Info().Msg("Logout without session cookie")
		return
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		log.Info().Err(err).Msg("Logout attempt with invalid/expired token")
		return
	}
	log.Info().Int64("user_id", claims.ID).Str("email", claims.Email).Msg("User logged out successfully")
}

// dummyDigest is compared against when the email is unknown so both failure
// paths pay for one bcrypt comparison.
func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("timing-equalizer-password")
	})
	return s.dummyHash
}

// createUser hashes password and inserts the user, translating a unique
// violation into ErrEmailExists. Shared by registration and user creation.
func createUser(ctx context.Context, users domain.UserRepository, hasher *auth.Hasher, name, email, password string, role domain.Role) (*domain.PublicUser, error) {
	if role == "" {
		role = domain.RoleUser
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := users.Create(ctx, domain.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
