package userRepo

import (
	"context"
	"fmt"
	"time"

	"m3allem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userIndexes backs the login lookup (email, stored lowercased), the id lookups and
// the per-role counts of the admin overview.
var userIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_id")},
	{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_email")},
	{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_role_created")},
}

func (r *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// CountByRole groups accounts by role on the role index.
func (r *MongoUserRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$role"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  models.Role `bson:"_id"`
		Count int         `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode role counts: %w", err)
	}
	counts := make(map[models.Role]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
