package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"stayops/database"
	"stayops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPaymentAttemptRepo implements PaymentAttemptRepository using MongoDB.
type MongoPaymentAttemptRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentAttemptRepo constructs a new instance of MongoPaymentAttemptRepo.
func NewMongoPaymentAttemptRepo() PaymentAttemptRepository {
	repo := &MongoPaymentAttemptRepo{
		coll: database.DB().Collection("payment_attempts"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		panic(fmt.Sprintf("payment repo: failed to ensure indexes: %v", err))
	}
	return repo
}

// Record appends a payment attempt; replaying the same attempt id is a no-op.
func (repo *MongoPaymentAttemptRepo) Record(ctx context.Context, a *models.PaymentAttempt) error {
	filter := bson.M{"id": a.ID}
	update := bson.M{"$setOnInsert": a}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error recording payment attempt %s: %w", a.ID, err)
	}
	return nil
}

// GetByID retrieves a recorded payment attempt.
func (repo *MongoPaymentAttemptRepo) GetByID(ctx context.Context, id string) (*models.PaymentAttempt, error) {
	var a models.PaymentAttempt
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching payment attempt %s: %w", id, err)
	}
	return &a, nil
}
