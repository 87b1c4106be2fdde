package reviewRepo

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

// MongoReviewRepo implements ReviewRepository using MongoDB. Rating recomputes run in a
// multi-document transaction, which requires a replica set deployment.
type MongoReviewRepo struct {
	coll        *mongo.Collection
	technicians *mongo.Collection
}

func NewMongoReviewRepo(db *mongo.Database, technicians *mongo.Collection) (*MongoReviewRepo, error) {
	repo := &MongoReviewRepo{coll: db.Collection("reviews"), technicians: technicians}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One review per booking; reviews without a booking are not constrained.
	perBooking := options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
		"bookingId": bson.M{"$exists": true},
	})
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "technicianId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: perBooking},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

// inRatingTransaction runs write inside a transaction that ends by recomputing the
// technician's rating. The technician document is touched first so that concurrent
// recomputes for the same technician hit a write conflict and are retried by
// WithTransaction instead of losing an update.
func (r *MongoReviewRepo) inRatingTransaction(
	ctx context.Context,
	technicianID string,
	write func(sc mongo.SessionContext) error,
) (models.RatingSummary, error) {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		lock, err := r.technicians.UpdateOne(sc, bson.M{"id": technicianID}, bson.M{"$inc": bson.M{"ratingVersion": 1}})
		if err != nil {
			return nil, fmt.Errorf("lock technician failed: %w", err)
		}
		if lock.MatchedCount == 0 {
			return nil, fmt.Errorf("technician %s: %w", technicianID, models.ErrNotFound)
		}

		if err := write(sc); err != nil {
			return nil, err
		}

		summary, err := r.summarize(sc, technicianID)
		if err != nil {
			return nil, err
		}
		_, err = r.technicians.UpdateOne(sc,
			bson.M{"id": technicianID},
			bson.M{"$set": bson.M{"rating": summary.Rating, "reviewCount": summary.ReviewCount}},
		)
		if err != nil {
			return nil, fmt.Errorf("write technician rating failed: %w", err)
		}
		return summary, nil
	})
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("review transaction failed: %w", err)
	}
	return result.(models.RatingSummary), nil
}

func (r *MongoReviewRepo) summarize(ctx context.Context, technicianID string) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"technicianId": technicianID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.M{"$avg": "$rating"}},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("rating aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var row struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return models.RatingSummary{}, fmt.Errorf("failed to decode rating aggregate: %w", err)
		}
	}
	return models.RatingSummary{Rating: roundRating(row.Avg), ReviewCount: row.Count}, nil
}

func (r *MongoReviewRepo) CreateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error) {
	return r.inRatingTransaction(ctx, review.TechnicianID, func(sc mongo.SessionContext) error {
		if _, err := r.coll.InsertOne(sc, review); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("booking %s already reviewed: %w", review.BookingID, models.ErrConflict)
			}
			return fmt.Errorf("insert review failed: %w", err)
		}
		return nil
	})
}

func (r *MongoReviewRepo) UpdateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error) {
	return r.inRatingTransaction(ctx, review.TechnicianID, func(sc mongo.SessionContext) error {
		res, err := r.coll.ReplaceOne(sc, bson.M{"id": review.ID}, review)
		if err != nil {
			return fmt.Errorf("replace review failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("review %s: %w", review.ID, models.ErrNotFound)
		}
		return nil
	})
}

func (r *MongoReviewRepo) SetResponse(ctx context.Context, review *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"response":    review.Response,
		"respondedAt": review.RespondedAt,
		"updatedAt":   review.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to store response on review %s: %w", review.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("review %s: %w", review.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("review %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch review with id %s: %w", id, err)
	}
	return &review, nil
}

func (r *MongoReviewRepo) ListByTechnician(ctx context.Context, technicianID string) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"technicianId": technicianID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *MongoReviewRepo) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{"bookingId": bookingID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check review for booking %s: %w", bookingID, err)
	}
	return n > 0, nil
}
