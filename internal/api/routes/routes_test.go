package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/api/handlers/common"
	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
	"Agora/internal/db/memory"
)

const testSecret = "routes-test-secret-routes-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()

	postSvc := posts.NewPostService(store.Posts(), posts.Counters{
		Comments: store.Comments().CountByPosts,
	}, nil)
	commentSvc := comments.NewCommentService(store.Comments(), postSvc, nil)
	likeSvc := likes.NewLikeService(store.Likes(),
		likes.NewCompositeTargetValidator(postSvc.PostExists, commentSvc.CommentExists), nil)
	feedSvc := feed.NewFeedService(postSvc, commentSvc, feed.NewCursorCodec(testSecret), nil)

	auth := middleware.NewJWTAuthMiddleware(testSecret)
	r := chi.NewRouter()
	RegisterPostRoutes(r, postSvc, auth, true)
	guard := common.NewVisibilityGuard(postSvc, commentSvc)
	RegisterCommentRoutes(r, commentSvc, guard, auth)
	RegisterLikeRoutes(r, likeSvc, guard, auth)
	RegisterFeedRoutes(r, feedSvc, auth)
	return r
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) do(method, path, userID string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("Authorization", bearer(c.t, userID))
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(c.t, json.NewDecoder(w.Body).Decode(out))
	}
	return w.Code
}

func TestRoutes_EndToEnd(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	var post posts.Post
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/posts", "alice", map[string]any{"text": "hello"}, &post))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/posts", "", map[string]any{"text": "x"}, nil))

	var comment comments.Comment
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/posts/"+post.ID+"/comments", "bob", map[string]any{"text": "hi"}, &comment))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/comments/"+comment.ID+"/like", "carol", nil, nil))

	var toggled struct {
		Liked bool `json:"liked"`
		Count int  `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/likes", "bob", map[string]string{"targetId": post.ID, "targetType": "post"}, &toggled))
	assert.True(t, toggled.Liked)

	var likers struct {
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/likes/post/"+post.ID, "", nil, &likers))
	assert.Equal(t, 1, likers.Count)

	var page feed.FeedResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/feed", "", nil, &page))
	require.Len(t, page.Feed, 1)
	require.NotNil(t, page.Feed[0].MostLikedComment)
	assert.Equal(t, comment.ID, page.Feed[0].MostLikedComment.ID)
	assert.Equal(t, 1, page.Feed[0].MostLikedComment.Likes)

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPut, "/api/posts/"+post.ID+"/hide", "bob", nil, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/posts/"+post.ID+"/hide", "alice", nil, nil))

	page = feed.FeedResponse{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/feed", "", nil, &page))
	assert.Empty(t, page.Feed)

	page = feed.FeedResponse{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/feed/mine", "alice", nil, &page))
	assert.Len(t, page.Feed, 1)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/posts/"+post.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/posts/"+post.ID, "alice", nil, nil))

	// everything hanging off the hidden post is masked for non-owners too
	for _, path := range []string{
		"/api/posts/" + post.ID + "/comments",
		"/api/posts/" + post.ID + "/comments/top",
		"/api/likes/post/" + post.ID,
		"/api/likes/comment/" + comment.ID,
	} {
		assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, path, "bob", nil, nil), path)
		assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, path, "", nil, nil), path)
		assert.Equal(t, http.StatusOK, c.do(http.MethodGet, path, "alice", nil, nil), path)
	}
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/posts/"+post.ID+"/comments", "bob", map[string]any{"text": "still here?"}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/comments/"+comment.ID+"/like", "carol", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/likes", "bob", map[string]string{"targetId": post.ID, "targetType": "post"}, nil))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/posts/"+post.ID+"/comments", "alice", map[string]any{"text": "note to self"}, nil))

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/posts/"+post.ID, "alice", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/posts/"+post.ID, "alice", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/comments/"+comment.ID+"/like", "carol", nil, nil))

	likers.Count = -1
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/likes/post/"+post.ID, "", nil, &likers))
	assert.Zero(t, likers.Count)
}
