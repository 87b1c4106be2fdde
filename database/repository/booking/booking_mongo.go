package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m3allem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Collection is exposed for the review transaction, which checks the booking in the same session.
func (r *MongoBookingRepo) Collection() *mongo.Collection {
	return r.coll
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "jobId", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "technicianId", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &b, nil
}

// Update rewrites the booking but never the match score or explanation recorded at creation.
func (r *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"status":         b.Status,
		"scheduledDate":  b.ScheduledDate,
		"scheduledTime":  b.ScheduledTime,
		"estimatedCost":  b.EstimatedCost,
		"finalCost":      b.FinalCost,
		"discountCode":   b.DiscountCode,
		"discountAmount": b.DiscountAmount,
		"cancelReason":   b.CancelReason,
		"updatedAt":      b.UpdatedAt,
		"acceptedAt":     b.AcceptedAt,
		"startedAt":      b.StartedAt,
		"completedAt":    b.CompletedAt,
		"cancelledAt":    b.CancelledAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": b.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", b.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking %s: %w", b.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.JobID != "" {
		filter["jobId"] = f.JobID
	}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.TechnicianID != "" {
		filter["technicianId"] = f.TechnicianID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) StatsFor(ctx context.Context, technicianIDs []string) (map[string]models.TechnicianStats, error) {
	stats := make(map[string]models.TechnicianStats, len(technicianIDs))
	if len(technicianIDs) == 0 {
		return stats, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	active := bson.A{models.BookingPending, models.BookingAccepted, models.BookingInProgress}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"technicianId": bson.M{"$in": technicianIDs}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$technicianId"},
			{Key: "total", Value: bson.M{"$sum": 1}},
			{Key: "completed", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.BookingCompleted}}, 1, 0}}}},
			{Key: "active", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$in": bson.A{"$status", active}}, 1, 0}}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate technician stats: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			ID        string `bson:"_id"`
			Total     int    `bson:"total"`
			Completed int    `bson:"completed"`
			Active    int    `bson:"active"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode technician stats: %w", err)
		}
		stats[row.ID] = models.TechnicianStats{Total: row.Total, Completed: row.Completed, Active: row.Active}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return stats, nil
}
