// Package mongo implements the repositories on MongoDB using the official
// v2 driver. Posts, comments and likes live in one collection each.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	postsCollection    = "posts"
	commentsCollection = "comments"
	likesCollection    = "likes"
)

// Connect opens a client and verifies it can reach the primary
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// uniq_user_target backs like toggling; it must exist before serving traffic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "hidden", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("hidden_createdAt")},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("user_createdAt")},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}

	_, err = db.Collection(commentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("post_createdAt")},
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "likes", Value: -1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("post_rank")},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}

	_, err = db.Collection(likesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "target_id", Value: 1}, {Key: "target_type", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_target")},
		{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("target_createdAt")},
	})
	if err != nil {
		return fmt.Errorf("failed to create like indexes: %w", err)
	}
	return nil
}

// isDuplicateKey reports a unique index violation (E11000)
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// countBy groups docs matching filter by field and counts them
func countBy(ctx context.Context, col *mongo.Collection, filter bson.M, field string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	counts := make(map[string]int)
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.N
	}
	return counts, cur.Err()
}
