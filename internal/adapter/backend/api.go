package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/session"
)

const (
	postsPath = "/api/posts"
	mePath    = "/api/me"
)

// Authorizer supplies the Authorization header for privileged calls.
type Authorizer interface {
	EnsureAuthorization(ctx context.Context, require bool) (session.Authorization, error)
}

// API is the media API. Every call consults the Authorizer first.
type API struct {
	client *Client
	auth   Authorizer
}

func NewAPI(client *Client, auth Authorizer) *API {
	return &API{client: client, auth: auth}
}

// ListPosts works for anonymous callers too.
func (a *API) ListPosts(ctx context.Context, query string) ([]domain.Post, error) {
	authz, err := a.auth.EnsureAuthorization(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	path := postsPath
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}

	var posts []domain.Post
	if err := a.client.do(ctx, http.MethodGet, path, authz.HeaderValue, nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (a *API) CreatePost(ctx context.Context, post domain.NewPost) (*domain.Post, error) {
	authz, err := a.auth.EnsureAuthorization(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	var created domain.Post
	if err := a.client.do(ctx, http.MethodPost, postsPath, authz.HeaderValue, post, &created); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

// DeletePost removes a post owned by the caller.
func (a *API) DeletePost(ctx context.Context, id int64) error {
	authz, err := a.auth.EnsureAuthorization(ctx, true)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := a.client.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", postsPath, id), authz.HeaderValue, nil, nil); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (a *API) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	authz, err := a.auth.EnsureAuthorization(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	var identity domain.Identity
	if err := a.client.do(ctx, http.MethodGet, mePath, authz.HeaderValue, nil, &identity); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &identity, nil
}
