package httpserver

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/config"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errNotPostOwner       = errors.New("post belongs to another user")
)

type account struct {
	identity domain.Identity
	password string
}

// Store is the in-memory user and post storage of the development backend.
type Store struct {
	clock clockwork.Clock

	mu         sync.RWMutex
	byName     map[string]*account
	byID       map[int64]*account
	posts      []domain.Post
	nextPostID int64
}

func NewStore(users []config.User, clock clockwork.Clock) *Store {
	s := &Store{
		clock:      clock,
		byName:     make(map[string]*account, len(users)),
		byID:       make(map[int64]*account, len(users)),
		nextPostID: 1,
	}

	for i, u := range users {
		a := &account{
			identity: domain.Identity{
				ID:             int64(i + 1),
				Username:       u.Username,
				Email:          u.Username + "@mediapost.local",
				Avatar:         "/avatars/" + u.Username + ".png",
				CreatedAt:      clock.Now().UTC(),
				EmailConfirmed: true,
				Admin:          u.Admin,
				Banned:         u.Banned,
			},
			password: u.Password,
		}
		s.byName[u.Username] = a
		s.byID[a.identity.ID] = a
	}
	return s
}

// Authenticate checks the credentials and returns the matching identity.
func (s *Store) Authenticate(creds domain.Credentials) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byName[creds.Username]
	if !ok || a.password != creds.Password {
		return domain.Identity{}, errInvalidCredentials
	}
	return a.identity, nil
}

func (s *Store) UserByID(id int64) (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.Identity{}, false
	}
	return a.identity, true
}

// ListPosts returns posts whose title contains query, newest first.
func (s *Store) ListPosts(query string) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	posts := make([]domain.Post, 0, len(s.posts))
	for _, p := range slices.Backward(s.posts) {
		if query == "" || strings.Contains(strings.ToLower(p.Title), query) {
			posts = append(posts, p)
		}
	}
	return posts
}

func (s *Store) CreatePost(author domain.Identity, post domain.NewPost) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := domain.Post{
		ID:         s.nextPostID,
		Title:      post.Title,
		MediaURL:   post.MediaURL,
		AuthorID:   author.ID,
		AuthorName: author.Name(),
		CreatedAt:  s.clock.Now().UTC(),
	}
	s.nextPostID++
	s.posts = append(s.posts, created)
	return created
}

// DeletePost removes a post. Only its author or an admin may delete it.
func (s *Store) DeletePost(id int64, by domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.posts, func(p domain.Post) bool { return p.ID == id })
	if idx < 0 {
		return domain.ErrPostNotFound
	}
	if s.posts[idx].AuthorID != by.ID && !by.Admin {
		return errNotPostOwner
	}
	s.posts = slices.Delete(s.posts, idx, idx+1)
	return nil
}
