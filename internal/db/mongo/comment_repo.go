package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Agora/internal/core/comments"
)

type mongoCommentRepo struct {
	col *mongo.Collection
}

// NewCommentRepository creates a MongoDB comment repository
func NewCommentRepository(db *mongo.Database) comments.Repository {
	return &mongoCommentRepo{col: db.Collection(commentsCollection)}
}

// rankSort matches comments.Outranks
var rankSort = bson.D{
	{Key: "likes", Value: -1},
	{Key: "created_at", Value: 1},
	{Key: "_id", Value: 1},
}

func (r *mongoCommentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	comment.CreatedAt = comment.CreatedAt.Truncate(time.Millisecond)
	comment.UpdatedAt = comment.UpdatedAt.Truncate(time.Millisecond)

	if _, err := r.col.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *mongoCommentRepo) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	var comment comments.Comment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

func (r *mongoCommentRepo) IncrementLikes(ctx context.Context, id string) (*comments.Comment, error) {
	var comment comments.Comment
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"likes": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment comment likes: %w", err)
	}
	return &comment, nil
}

func (r *mongoCommentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	cur, err := r.col.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	result := make([]*comments.Comment, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return result, nil
}

func (r *mongoCommentRepo) GetTopByPost(ctx context.Context, postID string) (*comments.Comment, error) {
	var comment comments.Comment
	err := r.col.FindOne(ctx, bson.M{"post_id": postID},
		options.FindOne().SetSort(rankSort)).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get top comment: %w", err)
	}
	return &comment, nil
}

// GetTopByPosts sorts by post then rank and keeps the first doc per post
func (r *mongoCommentRepo) GetTopByPosts(ctx context.Context, postIDs []string) (map[string]*comments.Comment, error) {
	result := make(map[string]*comments.Comment)
	if len(postIDs) == 0 {
		return result, nil
	}

	sort := append(bson.D{{Key: "post_id", Value: 1}}, rankSort...)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post_id": bson.M{"$in": postIDs}}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$post_id"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$doc"}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get top comments: %w", err)
	}

	var list []*comments.Comment
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode top comments: %w", err)
	}
	for _, c := range list {
		result[c.PostID] = c
	}
	return result, nil
}

func (r *mongoCommentRepo) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	if len(postIDs) == 0 {
		return map[string]int{}, nil
	}

	counts, err := countBy(ctx, r.col, bson.M{"post_id": bson.M{"$in": postIDs}}, "post_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return counts, nil
}
