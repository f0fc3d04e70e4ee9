package httpserver

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore([]config.User{
		{Username: "alice", Password: "pw", Admin: true},
		{Username: "bob", Password: "pw"},
	}, clockwork.NewFakeClock())
}

func TestStore_Authenticate(t *testing.T) {
	s := newTestStore()

	identity, err := s.Authenticate(domain.Credentials{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), identity.ID)
	assert.Equal(t, "bob@mediapost.local", identity.Email)

	_, err = s.Authenticate(domain.Credentials{Username: "bob", Password: "wrong"})
	assert.ErrorIs(t, err, errInvalidCredentials)
}

func TestStore_PostsNewestFirstAndFiltered(t *testing.T) {
	s := newTestStore()
	bob, _ := s.UserByID(2)

	s.CreatePost(bob, domain.NewPost{Title: "Mountain Lake", MediaURL: "https://cdn/1.jpg"})
	s.CreatePost(bob, domain.NewPost{Title: "City at night", MediaURL: "https://cdn/2.jpg"})

	posts := s.ListPosts("")
	require.Len(t, posts, 2)
	assert.Equal(t, int64(2), posts[0].ID)

	assert.Len(t, s.ListPosts("LAKE"), 1)
	assert.Empty(t, s.ListPosts("beach"))
}

func TestStore_DeletePost(t *testing.T) {
	s := newTestStore()
	alice, _ := s.UserByID(1)
	bob, _ := s.UserByID(2)
	post := s.CreatePost(alice, domain.NewPost{Title: "a", MediaURL: "https://cdn/a.jpg"})

	assert.ErrorIs(t, s.DeletePost(post.ID, bob), errNotPostOwner)
	assert.NoError(t, s.DeletePost(post.ID, alice))
	assert.ErrorIs(t, s.DeletePost(post.ID, alice), domain.ErrPostNotFound)
}

func TestTokens_IssueAndVerify(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tk := newTokens("test-token-secret-0123456789", time.Minute, clock)

	token, expiresIn, err := tk.Issue(7)
	require.NoError(t, err)
	assert.Equal(t, int64(60), expiresIn)

	userID, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	clock.Advance(61 * time.Second)
	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestTokens_RejectsForeignSignature(t *testing.T) {
	clock := clockwork.NewFakeClock()
	token, _, err := newTokens("other-secret-0123456789abcdef", time.Minute, clock).Issue(7)
	require.NoError(t, err)

	_, err = newTokens("test-token-secret-0123456789", time.Minute, clock).Verify(token)
	assert.ErrorIs(t, err, errInvalidToken)
}
