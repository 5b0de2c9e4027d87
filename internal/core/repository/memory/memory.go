// Package memory provides in-process implementations of the domain
// repositories. They enforce the same unique, foreign key and cascade rules
// as the PostgreSQL schema and back the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/duynhne/content-service/internal/core/domain"
)

type userRecord struct {
	domain.PublicUser
	password string
}

// Store holds users, posts and comments behind one lock so cascades are
// applied atomically.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextID   int64
	users    map[int64]*userRecord
	posts    map[int64]*domain.Post
	comments map[int64]*domain.Comment
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]*userRecord),
		posts:    make(map[int64]*domain.Post),
		comments: make(map[int64]*domain.Comment),
	}
}

// Users returns a domain.UserRepository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Posts returns a domain.PostRepository view of the store.
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

// Comments returns a domain.CommentRepository view of the store.
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) deletePostLocked(id int64) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

// UserRepository implements domain.UserRepository.
type UserRepository struct{ s *Store }

var _ domain.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) List(_ context.Context) ([]domain.PublicUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.PublicUser, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u.PublicUser)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.PublicUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	pub := u.PublicUser
	return &pub, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u := r.byEmailLocked(email); u != nil {
		return &domain.UserRow{PublicUser: u.PublicUser, PasswordHash: u.password}, nil
	}
	return nil, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.byEmailLocked(email) != nil, nil
}

func (r *UserRepository) Create(_ context.Context, user domain.NewUser) (*domain.PublicUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byEmailLocked(user.Email) != nil {
		return nil, domain.ErrConflict
	}
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := r.s.now()
	rec := &userRecord{
		PublicUser: domain.PublicUser{
			ID:        r.s.id(),
			Name:      user.Name,
			Email:     user.Email,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		password: user.PasswordHash,
	}
	r.s.users[rec.ID] = rec

	pub := rec.PublicUser
	return &pub, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, changes domain.UserChanges) (*domain.PublicUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if changes.Email != nil {
		if other := r.byEmailLocked(*changes.Email); other != nil && other.ID != id {
			return nil, domain.ErrConflict
		}
		rec.Email = *changes.Email
	}
	if changes.Name != nil {
		rec.Name = *changes.Name
	}
	if changes.Role != nil {
		rec.Role = *changes.Role
	}
	rec.UpdatedAt = r.s.now()

	pub := rec.PublicUser
	return &pub, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) (*domain.DeletedUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.UserID == id {
			r.s.deletePostLocked(pid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	return &domain.DeletedUser{ID: rec.ID, Name: rec.Name, Email: rec.Email}, nil
}

func (r *UserRepository) byEmailLocked(email string) *userRecord {
	for _, u := range r.s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// PostRepository implements domain.PostRepository.
type PostRepository struct{ s *Store }

var _ domain.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) List(_ context.Context, limit, offset int) ([]domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]domain.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), nil
}

func (r *PostRepository) GetBySlug(_ context.Context, slug string) (*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p := r.bySlugLocked(slug); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *PostRepository) Create(_ context.Context, post domain.NewPost) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.UserID]; !ok {
		return nil, domain.ErrMissingReference
	}
	if r.bySlugLocked(post.Slug) != nil {
		return nil, domain.ErrConflict
	}
	now := r.s.now()
	p := &domain.Post{
		ID:        r.s.id(),
		UserID:    post.UserID,
		Title:     post.Title,
		Slug:      post.Slug,
		Content:   post.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.posts[p.ID] = p

	cp := *p
	return &cp, nil
}

func (r *PostRepository) Update(_ context.Context, id int64, changes domain.PostChanges) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	if changes.Slug != nil {
		if other := r.bySlugLocked(*changes.Slug); other != nil && other.ID != id {
			return nil, domain.ErrConflict
		}
		p.Slug = *changes.Slug
	}
	if changes.Title != nil {
		p.Title = *changes.Title
	}
	if changes.Content != nil {
		p.Content = *changes.Content
	}
	p.UpdatedAt = r.s.now()

	cp := *p
	return &cp, nil
}

func (r *PostRepository) Delete(_ context.Context, id int64) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	r.s.deletePostLocked(id)
	return &cp, nil
}

func (r *PostRepository) bySlugLocked(slug string) *domain.Post {
	for _, p := range r.s.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

// CommentRepository implements domain.CommentRepository.
type CommentRepository struct{ s *Store }

var _ domain.CommentRepository = (*CommentRepository)(nil)

func (r *CommentRepository) ListByPost(_ context.Context, postID int64, limit, offset int) ([]domain.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := make([]domain.CommentView, 0)
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		v := domain.CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if u, ok := r.s.users[c.AuthorID]; ok {
			v.Author = u.Name
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
	return window(views, limit, offset), nil
}

func (r *CommentRepository) Create(_ context.Context, postID, authorID int64, content string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return nil, domain.ErrMissingReference
	}
	if _, ok := r.s.users[authorID]; !ok {
		return nil, domain.ErrMissingReference
	}
	now := r.s.now()
	c := &domain.Comment{
		ID:        r.s.id(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.comments[c.ID] = c

	cp := *c
	return &cp, nil
}

func (r *CommentRepository) Update(_ context.Context, id, postID, authorID int64, content string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok || c.PostID != postID || c.AuthorID != authorID {
		return nil, nil
	}
	c.Content = content
	c.UpdatedAt = r.s.now()

	cp := *c
	return &cp, nil
}

func (r *CommentRepository) Delete(_ context.Context, id, postID, authorID int64) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok || c.PostID != postID || c.AuthorID != authorID {
		return nil, nil
	}
	delete(r.s.comments, id)

	cp := *c
	return &cp, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 || limit < 0 || offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
