package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo(db *mongo.Database) (*MongoPaymentRepo, error) {
	repo := &MongoPaymentRepo{coll: db.Collection("payments")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "gatewayRef", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"id": id}, "payment "+id)
}

func (r *MongoPaymentRepo) GetByGatewayRef(ctx context.Context, ref string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"gatewayRef": ref}, "payment with gateway ref "+ref)
}

func (r *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M, label string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var p models.Payment
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", label, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", label, err)
	}
	return &p, nil
}

func (r *MongoPaymentRepo) Update(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update payment with id %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment %s: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"bookingId": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)
	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}
