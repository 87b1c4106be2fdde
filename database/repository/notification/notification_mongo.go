package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"m3allem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) (*MongoNotificationRepo, error) {
	repo := &MongoNotificationRepo{coll: db.Collection("notifications")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)
	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "userId": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete notifications of user %s: %w", userID, err)
	}
	return nil
}
