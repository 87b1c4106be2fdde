package technicianRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"m3allem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTechnicianRepo implements TechnicianRepository using MongoDB.
type MongoTechnicianRepo struct {
	coll *mongo.Collection
}

func NewMongoTechnicianRepo(db *mongo.Database) (*MongoTechnicianRepo, error) {
	repo := &MongoTechnicianRepo{coll: db.Collection("technicians")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Collection is exposed for the review transaction, which updates ratings in the same session.
func (r *MongoTechnicianRepo) Collection() *mongo.Collection {
	return r.coll
}

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoTechnicianRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "services", Value: 1}, {Key: "city", Value: 1}, {Key: "isAvailable", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create technician indexes: %w", err)
	}
	return nil
}

func (r *MongoTechnicianRepo) Create(ctx context.Context, t *models.Technician) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("technician profile for user %s already exists: %w", t.UserID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create technician: %w", err)
	}
	return nil
}

func (r *MongoTechnicianRepo) findOne(ctx context.Context, filter bson.M, label string) (*models.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var t models.Technician
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("technician %s: %w", label, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch technician %s: %w", label, err)
	}
	return &t, nil
}

func (r *MongoTechnicianRepo) GetByID(ctx context.Context, id string) (*models.Technician, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoTechnicianRepo) GetByUserID(ctx context.Context, userID string) (*models.Technician, error) {
	return r.findOne(ctx, bson.M{"userId": userID}, "of user "+userID)
}

func (r *MongoTechnicianRepo) Update(ctx context.Context, t *models.Technician) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"name":                t.Name,
		"phone":               t.Phone,
		"services":            t.Services,
		"skills":              t.Skills,
		"city":                t.City,
		"location":            t.Location,
		"languages":           t.Languages,
		"responseTimeMinutes": t.ResponseTimeMinutes,
		"completionRate":      t.CompletionRate,
		"yearsExperience":     t.YearsExperience,
		"hourlyRate":          t.HourlyRate,
		"isVerified":          t.IsVerified,
		"isAvailable":         t.IsAvailable,
		"isPro":               t.IsPro,
		"isPromo":             t.IsPromo,
		"updatedAt":           t.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": t.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update technician with id %s: %w", t.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("technician %s: %w", t.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoTechnicianRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete technician with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoTechnicianRepo) Search(ctx context.Context, c models.TechnicianSearch) ([]models.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if c.Service != "" {
		filter["services"] = models.CanonicalService(c.Service)
	}
	if c.City != "" {
		filter["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(c.City) + "$", "$options": "i"}
	}
	if c.AvailableOnly {
		filter["isAvailable"] = true
	}
	if c.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": c.MinRating}
	}

	// Sort by rating (descending), then id for a stable pool order.
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "id", Value: 1}})
	if c.Limit > 0 {
		opts.SetLimit(int64(c.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("technician search query failed: %w", err)
	}
	defer cursor.Close(ctx)

	technicians := []models.Technician{}
	if err := cursor.All(ctx, &technicians); err != nil {
		return nil, fmt.Errorf("failed to decode technicians: %w", err)
	}
	return technicians, nil
}

func (r *MongoTechnicianRepo) SetRating(ctx context.Context, id string, s models.RatingSummary) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"rating": s.Rating, "reviewCount": s.ReviewCount}})
	if err != nil {
		return fmt.Errorf("failed to set rating of technician %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoTechnicianRepo) IncrementCompletedJobs(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"completedJobs": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment completed jobs of technician %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	return nil
}
