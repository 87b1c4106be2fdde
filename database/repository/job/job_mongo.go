package jobRepo

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

// MongoJobRepo implements JobRepository using MongoDB.
type MongoJobRepo struct {
	coll *mongo.Collection
}

func NewMongoJobRepo(db *mongo.Database) (*MongoJobRepo, error) {
	repo := &MongoJobRepo{coll: db.Collection("jobs")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoJobRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: 1}}},
		// demand surge lookups
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "service", Value: 1}, {Key: "city", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

func (r *MongoJobRepo) Create(ctx context.Context, job *models.Job) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *MongoJobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var job models.Job
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch job with id %s: %w", id, err)
	}
	return &job, nil
}

func (r *MongoJobRepo) Update(ctx context.Context, job *models.Job) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": job.ID}, job)
	if err != nil {
		return fmt.Errorf("failed to update job with id %s: %w", job.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("job %s: %w", job.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoJobRepo) List(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Service != "" {
		filter["service"] = models.CanonicalService(f.Service)
	}
	if f.City != "" {
		filter["city"] = exactInsensitive(f.City)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

func (r *MongoJobRepo) CountPending(ctx context.Context, service, city, excludeID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":  models.JobPending,
		"service": models.CanonicalService(service),
		"city":    exactInsensitive(city),
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return int(n), nil
}

func exactInsensitive(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}
