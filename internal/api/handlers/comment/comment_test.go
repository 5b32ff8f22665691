package comment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/db/memory"
)

type fixture struct {
	posts    posts.Service
	comments comments.Service
	postID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	postSvc := posts.NewPostService(store.Posts(), posts.Counters{}, nil)
	p, err := postSvc.CreatePost(context.Background(), "alice", posts.CreatePostRequest{Text: "post"})
	require.NoError(t, err)
	return &fixture{
		posts:    postSvc,
		comments: comments.NewCommentService(store.Comments(), postSvc, nil),
		postID:   p.ID,
	}
}

func newRequest(method, userID, id string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/", &buf)

	ctx := req.Context()
	if userID != "" {
		ctx = middleware.SetTestUserID(ctx, userID)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func addComment(t *testing.T, h *CreateHandler, postID string, body map[string]any) *comments.Comment {
	t.Helper()
	w := httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "bob", postID, body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var c comments.Comment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&c))
	return &c
}

func TestCreateHandler(t *testing.T) {
	f := newFixture(t)
	handler := NewCreateHandler(f.comments)

	root := addComment(t, handler, f.postID, map[string]any{"text": "first"})
	assert.Equal(t, "bob", root.UserID)
	assert.Equal(t, f.postID, root.PostID)
	assert.Zero(t, root.Likes)
	assert.Nil(t, root.ParentCommentID)

	reply := addComment(t, handler, f.postID, map[string]any{"text": "reply", "parentCommentId": root.ID})
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, root.ID, *reply.ParentCommentID)

	tests := []struct {
		name   string
		userID string
		postID string
		body   map[string]any
		status int
	}{
		{"no auth", "", f.postID, map[string]any{"text": "x"}, http.StatusUnauthorized},
		{"empty text", "bob", f.postID, map[string]any{"text": ""}, http.StatusBadRequest},
		{"unknown post", "bob", "missing", map[string]any{"text": "x"}, http.StatusNotFound},
		{"unknown parent", "bob", f.postID, map[string]any{"text": "x", "parentCommentId": "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.HandleCreate(w, newRequest(http.MethodPost, tt.userID, tt.postID, tt.body))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCreateHandler_ParentOnOtherPost(t *testing.T) {
	f := newFixture(t)
	handler := NewCreateHandler(f.comments)

	other, err := f.posts.CreatePost(context.Background(), "alice", posts.CreatePostRequest{Text: "other"})
	require.NoError(t, err)
	parent := addComment(t, handler, other.ID, map[string]any{"text": "elsewhere"})

	w := httptest.NewRecorder()
	handler.HandleCreate(w, newRequest(http.MethodPost, "bob", f.postID, map[string]any{"text": "x", "parentCommentId": parent.ID}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeAndTopHandlers(t *testing.T) {
	f := newFixture(t)
	create := NewCreateHandler(f.comments)
	like := NewLikeHandler(f.comments)
	get := NewGetHandler(f.comments)

	w := httptest.NewRecorder()
	get.HandleTop(w, newRequest(http.MethodGet, "", f.postID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var empty TopOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&empty))
	assert.Nil(t, empty.Comment)

	a := addComment(t, create, f.postID, map[string]any{"text": "a"})
	b := addComment(t, create, f.postID, map[string]any{"text": "b"})

	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		like.HandleLike(w, newRequest(http.MethodPost, "", b.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	var liked comments.Comment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&liked))
	assert.Equal(t, 2, liked.Likes, "counter increments on every call")

	w = httptest.NewRecorder()
	get.HandleTop(w, newRequest(http.MethodGet, "", f.postID, nil))
	var top TopOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&top))
	require.NotNil(t, top.Comment)
	assert.Equal(t, b.ID, top.Comment.ID)
	assert.NotEqual(t, a.ID, top.Comment.ID)

	w = httptest.NewRecorder()
	like.HandleLike(w, newRequest(http.MethodPost, "", "missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThreadHandler(t *testing.T) {
	f := newFixture(t)
	create := NewCreateHandler(f.comments)
	get := NewGetHandler(f.comments)

	w := httptest.NewRecorder()
	get.HandleThread(w, newRequest(http.MethodGet, "", f.postID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"comments":[]}`, w.Body.String())

	root := addComment(t, create, f.postID, map[string]any{"text": "root"})
	addComment(t, create, f.postID, map[string]any{"text": "child", "parentCommentId": root.ID})

	w = httptest.NewRecorder()
	get.HandleThread(w, newRequest(http.MethodGet, "", f.postID, nil))
	var out ThreadOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out.Comments, 1)
	assert.Equal(t, root.ID, out.Comments[0].Comment.ID)
	require.Len(t, out.Comments[0].Replies, 1)
	assert.Equal(t, "child", out.Comments[0].Replies[0].Comment.Text)
}
