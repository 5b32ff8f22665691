package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
	"Agora/internal/db/memory"
)

// flakyRanker fails the batched lookup and, optionally, single posts
type flakyRanker struct {
	comments.Service
	failPosts map[string]bool
	calls     []string
}

func (f *flakyRanker) TopCommentsForPosts(ctx context.Context, postIDs []string) (map[string]*comments.Comment, error) {
	return nil, errors.New("batch query failed")
}

func (f *flakyRanker) GetMostLikedComment(ctx context.Context, postID string) (*comments.Comment, error) {
	f.calls = append(f.calls, postID)
	if f.failPosts[postID] {
		return nil, errors.New("lookup failed")
	}
	return f.Service.GetMostLikedComment(ctx, postID)
}

// failingLister always fails to list posts
type failingLister struct{}

func (failingLister) ListPosts(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	return nil, errors.New("posts unavailable")
}

type fixture struct {
	store    *memory.Store
	posts    posts.Service
	comments comments.Service
	svc      feed.Service
	codec    *feed.CursorCodec
	base     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	postSvc := posts.NewPostService(store.Posts(), posts.Counters{Comments: store.Comments().CountByPosts}, nil)
	commentSvc := comments.NewCommentService(store.Comments(), postSvc, nil)
	codec := feed.NewCursorCodec("test-secret")
	return &fixture{
		store:    store,
		posts:    postSvc,
		comments: commentSvc,
		svc:      feed.NewFeedService(postSvc, commentSvc, codec, nil),
		codec:    codec,
		base:     time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) post(t *testing.T, id, owner string, minute int, hidden bool) {
	t.Helper()
	require.NoError(t, f.store.Posts().Create(context.Background(), &posts.Post{
		ID:        id,
		UserID:    owner,
		Text:      id,
		Hidden:    hidden,
		CreatedAt: f.base.Add(time.Duration(minute) * time.Minute),
	}))
}

func (f *fixture) comment(t *testing.T, id, postID string, likes int) {
	t.Helper()
	require.NoError(t, f.store.Comments().Create(context.Background(), &comments.Comment{
		ID:        id,
		PostID:    postID,
		UserID:    "commenter",
		Text:      id,
		Likes:     likes,
		CreatedAt: f.base,
	}))
}

func ids(list []*feed.FeedPost) []string {
	out := make([]string, len(list))
	for i, fp := range list {
		out[i] = fp.ID
	}
	return out
}

func TestGetFeed_ExcludesHiddenNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.post(t, "t1", "alice", 1, false)
	f.post(t, "t2", "alice", 2, true)
	f.post(t, "t3", "bob", 3, false)

	f.comment(t, "c-low", "t1", 1)
	f.comment(t, "c-high", "t1", 7)

	resp, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t1"}, ids(resp.Feed))
	assert.Nil(t, resp.Cursor)

	assert.Nil(t, resp.Feed[0].MostLikedComment)
	require.NotNil(t, resp.Feed[1].MostLikedComment)
	assert.Equal(t, "c-high", resp.Feed[1].MostLikedComment.ID)
	assert.Equal(t, 2, resp.Feed[1].CommentCount)
}

func TestGetFeed_EmptyStore(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetFeed(context.Background(), feed.GetFeedRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Feed)
	assert.Empty(t, resp.Feed)
	assert.Nil(t, resp.Cursor)
}

func TestGetFeed_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		f.post(t, string(rune('a'+i)), "alice", i, false)
	}

	page1, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d"}, ids(page1.Feed))
	require.NotNil(t, page1.Cursor)

	page2, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 2, Cursor: page1.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(page2.Feed))
	require.NotNil(t, page2.Cursor)

	page3, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 2, Cursor: page2.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(page3.Feed))
	assert.Nil(t, page3.Cursor)
}

func TestGetFeed_SameTimestampOrderedByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.post(t, "x1", "alice", 0, false)
	f.post(t, "x2", "alice", 0, false)
	f.post(t, "x3", "alice", 0, false)

	page1, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"x3", "x2"}, ids(page1.Feed))

	page2, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 2, Cursor: page1.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"x1"}, ids(page2.Feed))
}

func TestGetFeed_LimitAndCursorValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{Limit: feed.MaxLimit + 1})
	require.Error(t, err)
	assert.True(t, feed.IsValidationError(err))

	bad := "not-a-cursor"
	_, err = f.svc.GetFeed(ctx, feed.GetFeedRequest{Cursor: &bad})
	assert.ErrorIs(t, err, feed.ErrInvalidCursor)
	assert.True(t, feed.IsValidationError(err))

	for i := 0; i < feed.DefaultLimit+3; i++ {
		f.post(t, string(rune('A'+i)), "alice", i, false)
	}
	resp, err := f.svc.GetFeed(ctx, feed.GetFeedRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Feed, feed.DefaultLimit)
	assert.NotNil(t, resp.Cursor)
}

func TestGetFeed_BatchFailureFallsBackPerPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.post(t, "p1", "alice", 1, false)
	f.post(t, "p2", "alice", 2, false)
	f.post(t, "p3", "alice", 3, false)
	f.comment(t, "c1", "p1", 2)
	f.comment(t, "c2", "p2", 4)

	ranker := &flakyRanker{Service: f.comments, failPosts: map[string]bool{"p2": true}}
	svc := feed.NewFeedService(f.posts, ranker, f.codec, nil)

	resp, err := svc.GetFeed(ctx, feed.GetFeedRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"p3", "p2", "p1"}, ids(resp.Feed))

	assert.Nil(t, resp.Feed[0].MostLikedComment)
	assert.Nil(t, resp.Feed[1].MostLikedComment, "failed lookup degrades to no comment")
	require.NotNil(t, resp.Feed[2].MostLikedComment)
	assert.Equal(t, "c1", resp.Feed[2].MostLikedComment.ID)

	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, ranker.calls)
}

func TestGetFeed_PostQueryFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	svc := feed.NewFeedService(failingLister{}, f.comments, f.codec, nil)

	_, err := svc.GetFeed(context.Background(), feed.GetFeedRequest{})
	require.Error(t, err)
	assert.False(t, feed.IsValidationError(err))
}

func TestGetUserFeeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.post(t, "a1", "alice", 1, false)
	f.post(t, "a2", "alice", 2, true)
	f.post(t, "b1", "bob", 3, false)
	f.comment(t, "ca", "a2", 1)

	t.Run("owner sees hidden posts", func(t *testing.T) {
		resp, err := f.svc.GetUserFeeds(ctx, feed.GetUserFeedRequest{OwnerID: "alice", ViewerID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "a1"}, ids(resp.Feed))
		require.NotNil(t, resp.Feed[0].MostLikedComment)
		assert.Equal(t, "ca", resp.Feed[0].MostLikedComment.ID)
	})

	t.Run("other viewer does not", func(t *testing.T) {
		resp, err := f.svc.GetUserFeeds(ctx, feed.GetUserFeedRequest{OwnerID: "alice", ViewerID: "bob"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids(resp.Feed))
	})

	t.Run("anonymous does not", func(t *testing.T) {
		resp, err := f.svc.GetUserFeeds(ctx, feed.GetUserFeedRequest{OwnerID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids(resp.Feed))
	})

	t.Run("owner required", func(t *testing.T) {
		_, err := f.svc.GetUserFeeds(ctx, feed.GetUserFeedRequest{ViewerID: "alice"})
		assert.True(t, feed.IsValidationError(err))
	})

	t.Run("unknown owner is empty", func(t *testing.T) {
		resp, err := f.svc.GetUserFeeds(ctx, feed.GetUserFeedRequest{OwnerID: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, resp.Feed)
	})
}

func TestGetFeed_CustomPageLimits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := feed.NewFeedService(f.posts, f.comments, f.codec, nil, feed.WithPageLimits(2, 3))

	for i := 0; i < 5; i++ {
		f.post(t, string(rune('a'+i)), "alice", i, false)
	}

	resp, err := svc.GetFeed(ctx, feed.GetFeedRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Feed, 2)

	_, err = svc.GetFeed(ctx, feed.GetFeedRequest{Limit: 4})
	assert.True(t, feed.IsValidationError(err))
}
