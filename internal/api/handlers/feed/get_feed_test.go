package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
	"Agora/internal/db/memory"
)

func newHandler(t *testing.T) (*GetFeedHandler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	postSvc := posts.NewPostService(store.Posts(), posts.Counters{Comments: store.Comments().CountByPosts}, nil)
	commentSvc := comments.NewCommentService(store.Comments(), postSvc, nil)
	svc := feed.NewFeedService(postSvc, commentSvc, feed.NewCursorCodec("feed-handler-test"), nil)
	return NewGetFeedHandler(svc), store
}

func seed(t *testing.T, store *memory.Store, id, owner string, minute int, hidden bool) {
	t.Helper()
	at := time.Date(2024, 6, 1, 12, minute, 0, 0, time.UTC)
	require.NoError(t, store.Posts().Create(context.Background(), &posts.Post{
		ID: id, UserID: owner, Text: id, Hidden: hidden, CreatedAt: at, UpdatedAt: at,
	}))
}

func serve(t *testing.T, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, feed.FeedResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, req)

	var resp feed.FeedResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func feedIDs(resp feed.FeedResponse) []string {
	out := make([]string, 0, len(resp.Feed))
	for _, p := range resp.Feed {
		out = append(out, p.ID)
	}
	return out
}

func TestHandleGetFeed(t *testing.T) {
	handler, store := newHandler(t)
	seed(t, store, "p1", "alice", 1, false)
	seed(t, store, "p2", "alice", 2, true)
	seed(t, store, "p3", "bob", 3, false)
	require.NoError(t, store.Comments().Create(context.Background(), &comments.Comment{
		ID: "c1", PostID: "p1", UserID: "bob", Text: "nice", Likes: 4,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	w, resp := serve(t, handler.HandleGetFeed, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p3", "p1"}, feedIDs(resp))
	require.NotNil(t, resp.Feed[1].MostLikedComment)
	assert.Equal(t, "c1", resp.Feed[1].MostLikedComment.ID)
	assert.Equal(t, 1, resp.Feed[1].CommentCount)

	w, page := serve(t, handler.HandleGetFeed, httptest.NewRequest(http.MethodGet, "/api/feed?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p3"}, feedIDs(page))
	require.NotNil(t, page.Cursor)

	w, next := serve(t, handler.HandleGetFeed, httptest.NewRequest(http.MethodGet, "/api/feed?limit=1&cursor="+url.QueryEscape(*page.Cursor), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p1"}, feedIDs(next))
}

func TestHandleGetFeed_BadParams(t *testing.T) {
	handler, _ := newHandler(t)

	for _, target := range []string{
		"/api/feed?limit=abc",
		"/api/feed?limit=51",
		"/api/feed?cursor=garbage",
	} {
		w, _ := serve(t, handler.HandleGetFeed, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestHandleGetMyFeed(t *testing.T) {
	handler, store := newHandler(t)
	seed(t, store, "a1", "alice", 1, false)
	seed(t, store, "a2", "alice", 2, true)
	seed(t, store, "b1", "bob", 3, false)

	req := httptest.NewRequest(http.MethodGet, "/api/feed/mine", nil)
	w, _ := serve(t, handler.HandleGetMyFeed, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = req.WithContext(middleware.SetTestUserID(req.Context(), "alice"))
	w, resp := serve(t, handler.HandleGetMyFeed, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a2", "a1"}, feedIDs(resp))
}

func TestHandleGetUserPosts(t *testing.T) {
	handler, store := newHandler(t)
	seed(t, store, "a1", "alice", 1, false)
	seed(t, store, "a2", "alice", 2, true)

	request := func(viewer string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/users/alice/posts", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("userID", "alice")
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		if viewer != "" {
			ctx = middleware.SetTestUserID(ctx, viewer)
		}
		return req.WithContext(ctx)
	}

	_, anon := serve(t, handler.HandleGetUserPosts, request(""))
	assert.Equal(t, []string{"a1"}, feedIDs(anon))

	_, other := serve(t, handler.HandleGetUserPosts, request("bob"))
	assert.Equal(t, []string{"a1"}, feedIDs(other))

	_, owner := serve(t, handler.HandleGetUserPosts, request("alice"))
	assert.Equal(t, []string{"a2", "a1"}, feedIDs(owner))
}
