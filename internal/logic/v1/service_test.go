package v1

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/content-service/internal/auth"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/core/repository/memory"
)

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, _ string, _ any) {
	p.types = append(p.types, eventType)
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store    *memory.Store
	tokens   *auth.TokenService
	events   *recordingPublisher
	auth     *AuthService
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func newFixture() *fixture {
	store := memory.NewStore()
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	pub := &recordingPublisher{}
	return &fixture{
		store:    store,
		tokens:   tokens,
		events:   pub,
		auth:     NewAuthService(store.Users(), hasher, tokens, pub),
		users:    NewUserService(store.Users(), hasher, pub),
		posts:    NewPostService(store.Posts(), pub),
		comments: NewCommentService(store.Comments()),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *domain.PublicUser {
	t.Helper()
	u, err := f.auth.Register(context.Background(), domain.RegisterRequest{Name: name, Email: email, Password: "secret1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.register(t, "Ann", "ann@x.com")

	got, err := f.auth.Authenticate(ctx, domain.LoginRequest{Email: "ann@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	token, err := f.auth.IssueSession(got)
	if err != nil {
		t.Fatalf("IssueSession() error = %v", err)
	}
	claims, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.ID != u.ID || claims.Email != u.Email || claims.Role != domain.RoleUser {
		t.Errorf("claims = %+v, want id=%d email=%s role=user", claims, u.ID, u.Email)
	}
	if len(f.events.types) != 1 || f.events.types[0] != "user.created" {
		t.Errorf("events = %v, want [user.created]", f.events.types)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture()
	f.register(t, "Ann", "ann@x.com")

	_, err := f.auth.Register(context.Background(), domain.RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("Register(duplicate) error = %v, want ErrEmailExists", err)
	}
	if KindOf(err) != KindDuplicate {
		t.Errorf("KindOf() = %v, want duplicate", KindOf(err))
	}
}

func TestAuthenticateFailuresAreIdentical(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.register(t, "Ann", "ann@x.com")

	_, wrongPassword := f.auth.Authenticate(ctx, domain.LoginRequest{Email: "ann@x.com", Password: "nope-nope"})
	_, unknownEmail := f.auth.Authenticate(ctx, domain.LoginRequest{Email: "bob@x.com", Password: "secret1"})

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want ErrInvalidCredentials", name, err)
		}
		if MessageOf(err, "") != "Invalid email or password" {
			t.Errorf("%s: message = %q", name, MessageOf(err, ""))
		}
	}
}

func TestUserServiceUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@x.com")
	f.register(t, "Bob", "bob@x.com")

	if _, err := f.users.Update(ctx, ann.ID, domain.UpdateUserRequest{}); !errors.Is(err, ErrNothingToUpdate) {
		t.Errorf("Update(empty) error = %v, want ErrNothingToUpdate", err)
	}

	taken := "bob@x.com"
	if _, err := f.users.Update(ctx, ann.ID, domain.UpdateUserRequest{Email: &taken}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Update(taken email) error = %v, want ErrEmailExists", err)
	}

	name := "Annie"
	got, err := f.users.Update(ctx, ann.ID, domain.UpdateUserRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update(name) error = %v", err)
	}
	if got.Name != "Annie" || got.Email != "ann@x.com" {
		t.Errorf("Update(name) = %+v, want name changed and email kept", got)
	}

	if _, err := f.users.Update(ctx, 999, domain.UpdateUserRequest{Name: &name}); KindOf(err) != KindNotFound {
		t.Errorf("Update(missing) kind = %v, want not_found", KindOf(err))
	}
}

func TestUserServiceCreateAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	u, err := f.users.Create(ctx, domain.CreateUserRequest{Name: "Cat", Email: "cat@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("Create() role = %q, want user", u.Role)
	}
	if _, err := f.users.Create(ctx, domain.CreateUserRequest{Name: "Cat", Email: "cat@x.com", Password: "secret1"}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrEmailExists", err)
	}

	deleted, err := f.users.Delete(ctx, u.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.Email != "cat@x.com" {
		t.Errorf("Delete() = %+v", deleted)
	}
	if _, err := f.users.Get(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrUserNotFound", err)
	}
}

func TestPostPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.register(t, "Ann", "ann@x.com")
	for i := 0; i < 5; i++ {
		if _, err := f.posts.Create(ctx, admin.ID, domain.CreatePostRequest{Title: "Post title", Content: "long enough content"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := f.posts.List(ctx, 1, 10)
	if err != nil || len(all) != 5 {
		t.Fatalf("List(1, 10) = %d posts, err %v; want 5", len(all), err)
	}
	second, err := f.posts.List(ctx, 2, 2)
	if err != nil || len(second) != 2 || second[0].ID != all[2].ID {
		t.Fatalf("List(2, 2) = %+v, err %v; want posts 3 and 4", second, err)
	}

	for _, tc := range []struct{ page, limit int }{{0, 10}, {1, 0}, {1, 101}, {math.MaxInt, 10}, {math.MaxInt/100 + 2, 100}} {
		if _, err := f.posts.List(ctx, tc.page, tc.limit); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("List(%d, %d) error = %v, want ErrInvalidPage", tc.page, tc.limit, err)
		}
	}
}

func TestPageWindow(t *testing.T) {
	limit, offset, err := pageWindow(math.MaxInt/10+1, 10)
	if err != nil {
		t.Fatalf("pageWindow(largest page) error = %v", err)
	}
	if limit != 10 || offset < 0 {
		t.Errorf("pageWindow(largest page) = %d, %d; want positive offset", limit, offset)
	}
	if _, _, err := pageWindow(math.MaxInt/10+2, 10); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("pageWindow(overflowing page) error = %v, want ErrInvalidPage", err)
	}
}

func TestPostSlugs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.register(t, "Ann", "ann@x.com")

	p, err := f.posts.Create(ctx, admin.ID, domain.CreatePostRequest{Title: "Hello, World!", Content: "long enough content"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(p.Slug, "hello-world-") || len(p.Slug) != len("hello-world-")+8 {
		t.Errorf("derived slug = %q, want hello-world-<8 chars>", p.Slug)
	}

	if _, err := f.posts.Create(ctx, admin.ID, domain.CreatePostRequest{Title: "Other", Slug: p.Slug, Content: "long enough content"}); !errors.Is(err, ErrSlugExists) {
		t.Errorf("Create(duplicate slug) error = %v, want ErrSlugExists", err)
	}

	got, err := f.posts.GetBySlug(ctx, p.Slug)
	if err != nil || got.ID != p.ID {
		t.Errorf("GetBySlug() = %+v, %v", got, err)
	}
	if _, err := f.posts.GetBySlug(ctx, "missing"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want ErrPostNotFound", err)
	}
}

func TestDeriveSlug(t *testing.T) {
	tests := map[string]string{
		"Hello World":  "hello-world-",
		"  Go -- Gin ": "go-gin-",
		"!!!":          "post-",
	}
	for title, prefix := range tests {
		got := DeriveSlug(title)
		if !strings.HasPrefix(got, prefix) || len(got) != len(prefix)+8 {
			t.Errorf("DeriveSlug(%q) = %q, want prefix %q", title, got, prefix)
		}
	}
}

func TestCommentOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@x.com")
	bob := f.register(t, "Bob", "bob@x.com")
	post, err := f.posts.Create(ctx, ann.ID, domain.CreatePostRequest{Title: "Hello", Slug: "hello", Content: "long enough content"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	c, err := f.comments.Create(ctx, post.ID, ann.ID, "first!")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := f.comments.Update(ctx, post.ID, c.ID, bob.ID, "hijack"); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Update(non-author) error = %v, want ErrCommentNotFound", err)
	}
	if err := f.comments.Delete(ctx, post.ID, c.ID, bob.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Delete(non-author) error = %v, want ErrCommentNotFound", err)
	}

	other, err := f.posts.Create(ctx, ann.ID, domain.CreatePostRequest{Title: "Other", Slug: "other", Content: "long enough content"})
	if err != nil {
		t.Fatalf("create other post: %v", err)
	}
	if _, err := f.comments.Update(ctx, other.ID, c.ID, ann.ID, "moved"); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Update(wrong post) error = %v, want ErrCommentNotFound", err)
	}
	if err := f.comments.Delete(ctx, other.ID, c.ID, ann.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Delete(wrong post) error = %v, want ErrCommentNotFound", err)
	}

	updated, err := f.comments.Update(ctx, post.ID, c.ID, ann.ID, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("Update(author) = %+v, %v", updated, err)
	}

	views, err := f.comments.ListByPost(ctx, post.ID, 1, 10)
	if err != nil || len(views) != 1 || views[0].Author != "Ann" {
		t.Fatalf("ListByPost() = %+v, %v", views, err)
	}

	if _, err := f.comments.Create(ctx, 999, ann.ID, "orphan"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Create(missing post) error = %v, want ErrPostNotFound", err)
	}
}

func TestDeletePostRemovesComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@x.com")
	post, _ := f.posts.Create(ctx, ann.ID, domain.CreatePostRequest{Title: "Hello", Slug: "hello", Content: "long enough content"})
	_, _ = f.comments.Create(ctx, post.ID, ann.ID, "first!")

	if _, err := f.posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	views, err := f.comments.ListByPost(ctx, post.ID, 1, 10)
	if err != nil || len(views) != 0 {
		t.Fatalf("ListByPost() after delete = %+v, %v; want empty", views, err)
	}
	if _, err := f.posts.Delete(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Delete(twice) error = %v, want ErrPostNotFound", err)
	}
}
