package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"Agora/internal/core/comments"
	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
)

// setupTestDB creates a throwaway database on TEST_MONGO_URI.
// Tests are skipped when no server is configured.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB repository tests")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err, "Failed to connect to test mongo")

	db := client.Database("agora_test_" + uuid.NewString()[:8])
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoRepos_PostLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	postRepo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	likeRepo := NewLikeRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, postRepo.Create(ctx, &posts.Post{
			ID: id, UserID: "alice", Text: id, Hidden: id == "p2",
			CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base,
		}))
	}

	list, err := postRepo.List(ctx, posts.ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p3", list[0].ID)
	assert.Equal(t, "p1", list[1].ID)

	after := posts.CursorOf(list[0])
	page, err := postRepo.List(ctx, posts.ListQuery{Limit: 10, After: &after, IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "p2", page[0].ID)

	_, err = postRepo.UpdateContentOwned(ctx, "p1", "bob", "pwned", nil, base)
	assert.ErrorIs(t, err, posts.ErrNotFound)

	hidden, err := postRepo.SetHiddenOwned(ctx, "p3", "alice", base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, hidden.Hidden)
	edited, err := postRepo.UpdateContentOwned(ctx, "p3", "alice", "edited", nil, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, edited.Hidden)
	assert.Equal(t, "edited", edited.Text)
	again, err := postRepo.SetHiddenOwned(ctx, "p3", "alice", base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, base.Add(2*time.Hour).Equal(again.UpdatedAt))

	for i, n := range []int{3, 1, 5, 0} {
		require.NoError(t, commentRepo.Create(ctx, &comments.Comment{
			ID: "c" + string(rune('0'+i)), PostID: "p1", UserID: "bob", Text: "x", Likes: n,
			CreatedAt: base.Add(time.Duration(i) * time.Second), UpdatedAt: base,
		}))
	}

	top, err := commentRepo.GetTopByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, top.Likes)

	batch, err := commentRepo.GetTopByPosts(ctx, []string{"p1", "p3"})
	require.NoError(t, err)
	assert.Equal(t, top.ID, batch["p1"].ID)
	assert.NotContains(t, batch, "p3")

	liked, err := likeRepo.Toggle(ctx, &likes.Like{ID: "l1", UserID: "bob", TargetID: "p1", TargetType: likes.TargetPost, CreatedAt: base})
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = likeRepo.Toggle(ctx, &likes.Like{ID: "l2", UserID: "bob", TargetID: "p1", TargetType: likes.TargetPost, CreatedAt: base})
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = likeRepo.Toggle(ctx, &likes.Like{ID: "l3", UserID: "bob", TargetID: "p1", TargetType: likes.TargetPost, CreatedAt: base})
	require.NoError(t, err)
	_, err = likeRepo.Toggle(ctx, &likes.Like{ID: "l4", UserID: "bob", TargetID: "c2", TargetType: likes.TargetComment, CreatedAt: base})
	require.NoError(t, err)

	counts, err := likeRepo.CountByTargets(ctx, likes.TargetPost, []string{"p1", "p3"})
	require.NoError(t, err)
	assert.Equal(t, 1, counts["p1"])
	assert.Zero(t, counts["p3"])

	require.NoError(t, postRepo.DeleteOwned(ctx, "p1", "alice"))

	_, err = commentRepo.GetByID(ctx, "c2")
	assert.ErrorIs(t, err, comments.ErrCommentNotFound)
	n, err := likeRepo.CountByTarget(ctx, likes.Target{ID: "c2", Type: likes.TargetComment})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, postRepo.DeleteOwned(ctx, "p1", "alice"), posts.ErrNotFound)
}

func TestMongoPostRepo_PurgeCommentsSweepsStragglers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db).(*mongoPostRepo)
	commentRepo := NewCommentRepository(db)
	likeRepo := NewLikeRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &posts.Post{ID: "p1", UserID: "alice", CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, repo.DeleteOwned(ctx, "p1", "alice"))

	// a comment and its like that slipped in while the post was going
	require.NoError(t, commentRepo.Create(ctx, &comments.Comment{
		ID: "late", PostID: "p1", UserID: "bob", Text: "x", CreatedAt: base, UpdatedAt: base,
	}))
	_, err := likeRepo.Toggle(ctx, &likes.Like{ID: "l-late", UserID: "carol", TargetID: "late", TargetType: likes.TargetComment, CreatedAt: base})
	require.NoError(t, err)

	require.NoError(t, repo.purgeComments(ctx, "p1"))

	_, err = commentRepo.GetByID(ctx, "late")
	assert.ErrorIs(t, err, comments.ErrCommentNotFound)
	n, err := likeRepo.CountByTarget(ctx, likes.Target{ID: "late", Type: likes.TargetComment})
	require.NoError(t, err)
	assert.Zero(t, n)
}
