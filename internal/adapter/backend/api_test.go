package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct {
	ensureFn func(ctx context.Context, require bool) (session.Authorization, error)
	required []bool
}

func (m *mockAuthorizer) EnsureAuthorization(ctx context.Context, require bool) (session.Authorization, error) {
	m.required = append(m.required, require)
	if m.ensureFn != nil {
		return m.ensureFn(ctx, require)
	}
	return session.Authorization{HeaderValue: "Bearer t1"}, nil
}

func TestAPI_ListPostsAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"id":1,"title":"cats","media_url":"https://cdn/cat.png","author_id":7}]`))
	})
	auth := &mockAuthorizer{ensureFn: func(context.Context, bool) (session.Authorization, error) {
		return session.Authorization{}, nil
	}}
	api := NewAPI(newTestClient(t, mux), auth)

	posts, err := api.ListPosts(context.Background(), "cats")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://cdn/cat.png", posts[0].MediaURL)
	assert.Equal(t, []bool{false}, auth.required)
}

func TestAPI_CreatePostSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		var post domain.NewPost
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&post))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Post{ID: 3, Title: post.Title, MediaURL: post.MediaURL})
	})
	auth := &mockAuthorizer{}
	api := NewAPI(newTestClient(t, mux), auth)

	post, err := api.CreatePost(context.Background(), domain.NewPost{Title: "dog", MediaURL: "https://cdn/dog.png"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), post.ID)
	assert.Equal(t, []bool{true}, auth.required)
}

func TestAPI_AuthorizationFailureSkipsRequest(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })
	auth := &mockAuthorizer{ensureFn: func(context.Context, bool) (session.Authorization, error) {
		return session.Authorization{}, domain.ErrAuthorizationRequired
	}}
	api := NewAPI(newTestClient(t, mux), auth)

	_, err := api.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthorizationRequired)

	err = api.DeletePost(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrAuthorizationRequired)

	assert.False(t, called)
}

func TestAPI_DeletePostNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.PathValue("id"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"post not found","type":"not_found"}`))
	})
	api := NewAPI(newTestClient(t, mux), &mockAuthorizer{})

	err := api.DeletePost(context.Background(), 42)

	assert.True(t, errors.Is(err, domain.ErrPostNotFound))
}

func TestAPI_CurrentUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"username":"alice","display_name":"Alice"}`))
	})
	api := NewAPI(newTestClient(t, mux), &mockAuthorizer{})

	identity, err := api.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Alice", identity.Name())
}
