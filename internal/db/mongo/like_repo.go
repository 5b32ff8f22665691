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
)

type mongoLikeRepo struct {
	col *mongo.Collection
}

// NewLikeRepository creates a MongoDB like repository.
// EnsureIndexes must have created uniq_user_target.
func NewLikeRepository(db *mongo.Database) likes.Repository {
	return &mongoLikeRepo{col: db.Collection(likesCollection)}
}

func targetFilter(userID string, target likes.Target) bson.M {
	return bson.M{"user_id": userID, "target_id": target.ID, "target_type": target.Type}
}

// Toggle deletes the like if present, otherwise inserts it. A duplicate key
// on insert means a concurrent toggle created it, so the like exists.
func (r *mongoLikeRepo) Toggle(ctx context.Context, like *likes.Like) (bool, error) {
	target := likes.Target{ID: like.TargetID, Type: like.TargetType}

	res, err := r.col.DeleteOne(ctx, targetFilter(like.UserID, target))
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	like.CreatedAt = like.CreatedAt.Truncate(time.Millisecond)
	like.UpdatedAt = like.UpdatedAt.Truncate(time.Millisecond)

	if _, err := r.col.InsertOne(ctx, like); err != nil {
		if isDuplicateKey(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	return true, nil
}

func (r *mongoLikeRepo) GetByUserAndTarget(ctx context.Context, userID string, target likes.Target) (*likes.Like, error) {
	var like likes.Like
	err := r.col.FindOne(ctx, targetFilter(userID, target)).Decode(&like)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, likes.ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (r *mongoLikeRepo) CountByTarget(ctx context.Context, target likes.Target) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"target_id": target.ID, "target_type": target.Type})
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return int(n), nil
}

func (r *mongoLikeRepo) CountByTargets(ctx context.Context, targetType likes.TargetType, targetIDs []string) (map[string]int, error) {
	if len(targetIDs) == 0 {
		return map[string]int{}, nil
	}

	counts, err := countBy(ctx, r.col, bson.M{
		"target_type": targetType,
		"target_id":   bson.M{"$in": targetIDs},
	}, "target_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return counts, nil
}

func (r *mongoLikeRepo) ListByTarget(ctx context.Context, target likes.Target) ([]*likes.Like, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"target_id": target.ID, "target_type": target.Type},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}

	result := make([]*likes.Like, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode likes: %w", err)
	}
	return result, nil
}
