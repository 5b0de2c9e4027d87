package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/duynhne/content-service/internal/core/domain"
)

func seedUser(t *testing.T, s *Store, email string) *domain.PublicUser {
	t.Helper()
	u, err := s.Users().Create(context.Background(), domain.NewUser{Name: "Ann", Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserEmailUnique(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "ann@x.com")

	_, err := s.Users().Create(context.Background(), domain.NewUser{Name: "Other", Email: "ann@x.com"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create(duplicate) error = %v, want ErrConflict", err)
	}
}

func TestPostRequiresOwner(t *testing.T) {
	s := NewStore()
	_, err := s.Posts().Create(context.Background(), domain.NewPost{UserID: 99, Title: "t", Slug: "t"})
	if !errors.Is(err, domain.ErrMissingReference) {
		t.Fatalf("Create() error = %v, want ErrMissingReference", err)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "ann@x.com")
	p, err := s.Posts().Create(ctx, domain.NewPost{UserID: u.ID, Title: "Hello", Slug: "hello", Content: "content here"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := s.Comments().Create(ctx, p.ID, u.ID, "first"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := s.Posts().Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	views, _ := s.Comments().ListByPost(ctx, p.ID, 10, 0)
	if len(views) != 0 {
		t.Fatalf("comments after post delete = %d, want 0", len(views))
	}
	if len(s.comments) != 0 {
		t.Fatalf("stored comments = %d, want 0", len(s.comments))
	}
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "ann@x.com")
	p, _ := s.Posts().Create(ctx, domain.NewPost{UserID: u.ID, Title: "Hello", Slug: "hello"})
	_, _ = s.Comments().Create(ctx, p.ID, u.ID, "first")

	if d, _ := s.Users().Delete(ctx, u.ID); d == nil || d.Email != "ann@x.com" {
		t.Fatalf("Delete() = %+v", d)
	}
	if len(s.posts) != 0 || len(s.comments) != 0 {
		t.Fatalf("posts=%d comments=%d after user delete, want 0/0", len(s.posts), len(s.comments))
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := window(items, 10, 0); len(got) != 5 {
		t.Errorf("window(10, 0) len = %d, want 5", len(got))
	}
	if got := window(items, 2, 2); len(got) != 2 || got[0] != 3 {
		t.Errorf("window(2, 2) = %v, want [3 4]", got)
	}
	if got := window(items, 2, 9); len(got) != 0 {
		t.Errorf("window(2, 9) = %v, want empty", got)
	}
	if got := window(items, 10, -10); len(got) != 0 {
		t.Errorf("window(10, -10) = %v, want empty", got)
	}
}
