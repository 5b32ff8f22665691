package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
)

type mongoPostRepo struct {
	posts    *mongo.Collection
	comments *mongo.Collection
	likes    *mongo.Collection
}

// NewPostRepository creates a MongoDB post repository.
// It needs the comment and like collections to cascade deletes.
func NewPostRepository(db *mongo.Database) posts.Repository {
	return &mongoPostRepo{
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
		likes:    db.Collection(likesCollection),
	}
}

func (r *mongoPostRepo) Create(ctx context.Context, post *posts.Post) error {
	// BSON dates hold milliseconds; keep the caller's copy in step with storage
	post.CreatedAt = post.CreatedAt.Truncate(time.Millisecond)
	post.UpdatedAt = post.UpdatedAt.Truncate(time.Millisecond)
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}

	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *mongoPostRepo) findOne(ctx context.Context, filter bson.M) (*posts.Post, error) {
	var post posts.Post
	err := r.posts.FindOne(ctx, filter).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	return &post, nil
}

func (r *mongoPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// UpdateContentOwned sets only the fields the edit carries, so a concurrent
// hide is never overwritten
func (r *mongoPostRepo) UpdateContentOwned(ctx context.Context, id, userID, text string, imageURLs []string, updatedAt time.Time) (*posts.Post, error) {
	set := bson.M{"updated_at": updatedAt.Truncate(time.Millisecond)}
	if text != "" {
		set["text"] = text
	}
	if len(imageURLs) > 0 {
		set["image_urls"] = imageURLs
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set})
}

func (r *mongoPostRepo) SetHiddenOwned(ctx context.Context, id, userID string, updatedAt time.Time) (*posts.Post, error) {
	// pipeline stage expressions read the pre-update document
	update := bson.A{bson.M{"$set": bson.M{
		"updated_at": bson.M{"$cond": bson.A{"$hidden", "$updated_at", updatedAt.Truncate(time.Millisecond)}},
		"hidden":     true,
	}}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, update)
}

func (r *mongoPostRepo) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*posts.Post, error) {
	var post posts.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	return &post, nil
}

// DeleteOwned removes dependents before the post itself, so a failure part
// way leaves the post in place and the delete can be retried. Comments and
// likes that land while the post is going are swept after it is gone.
func (r *mongoPostRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	if _, err := r.findOne(ctx, bson.M{"_id": id, "user_id": userID}); err != nil {
		return err
	}

	if err := r.purgeComments(ctx, id); err != nil {
		return err
	}
	if err := r.deleteLikes(ctx, likes.TargetPost, []string{id}); err != nil {
		return err
	}

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return posts.ErrNotFound
	}

	if err := r.purgeComments(ctx, id); err != nil {
		return err
	}
	return r.deleteLikes(ctx, likes.TargetPost, []string{id})
}

// purgeComments deletes a post's comments batch by batch. Each batch is
// deleted by id, with its likes swept before and after, so no like outlives
// the comment it points at.
func (r *mongoPostRepo) purgeComments(ctx context.Context, postID string) error {
	for {
		ids, err := r.commentIDs(ctx, postID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := r.deleteLikes(ctx, likes.TargetComment, ids); err != nil {
			return err
		}
		if _, err := r.comments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return fmt.Errorf("failed to delete comments for post %s: %w", postID, err)
		}
		if err := r.deleteLikes(ctx, likes.TargetComment, ids); err != nil {
			return err
		}
	}
}

func (r *mongoPostRepo) deleteLikes(ctx context.Context, targetType likes.TargetType, targetIDs []string) error {
	filter := bson.M{"target_type": targetType, "target_id": bson.M{"$in": targetIDs}}
	if _, err := r.likes.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete %s likes: %w", targetType, err)
	}
	return nil
}

func (r *mongoPostRepo) commentIDs(ctx context.Context, postID string) ([]string, error) {
	cur, err := r.comments.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for post %s: %w", postID, err)
	}

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode comment ids: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

func (r *mongoPostRepo) List(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	filter := bson.M{}
	if !q.IncludeHidden {
		filter["hidden"] = false
	}
	if q.OwnerID != "" {
		filter["user_id"] = q.OwnerID
	}
	if q.After != nil {
		after := q.After.CreatedAt.Truncate(time.Millisecond)
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": after}},
			bson.M{"created_at": after, "_id": bson.M{"$lt": q.After.ID}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	result := make([]*posts.Post, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	for _, p := range result {
		if p.ImageURLs == nil {
			p.ImageURLs = []string{}
		}
	}
	return result, nil
}
