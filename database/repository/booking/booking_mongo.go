package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo and
// ensures its indexes.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{
		coll: database.DB().Collection("bookings"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("booking repo: failed to ensure indexes: %v", err))
	}
	return repo
}

// GetByID retrieves a booking document by ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &b, nil
}

// GetByPaymentRef retrieves the booking carrying the given payment ref.
func (repo *MongoBookingRepo) GetByPaymentRef(ctx context.Context, ref string) (*models.Booking, error) {
	var b models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"payment_ref": ref}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking by payment ref %s: %w", ref, err)
	}
	return &b, nil
}

// UpdateStatusCAS transitions status only if the stored status still matches from.
func (repo *MongoBookingRepo) UpdateStatusCAS(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	var b models.Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing booking from a lost race.
			if _, getErr := repo.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrStale
		}
		return nil, fmt.Errorf("error updating booking %s status: %w", id, err)
	}
	return &b, nil
}

// SetPaymentStatus updates the payment status of a booking in place.
func (repo *MongoBookingRepo) SetPaymentStatus(ctx context.Context, id string, to models.PaymentStatus) (*models.Booking, error) {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"payment_status": to, "updated_at": time.Now()}}

	var b models.Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating booking %s payment status: %w", id, err)
	}
	return &b, nil
}

// AttachPayment stamps a settled payment onto an existing booking.
func (repo *MongoBookingRepo) AttachPayment(ctx context.Context, id, ref string, amount float64, currency string) (*models.Booking, error) {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"payment_ref":    ref,
		"payment_status": models.PayPaid,
		"amount_paid":    amount,
		"currency":       currency,
		"updated_at":     time.Now(),
	}}

	var b models.Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicatePaymentRef
		}
		return nil, fmt.Errorf("error attaching payment to booking %s: %w", id, err)
	}
	return &b, nil
}

// overlapFilter matches active bookings intersecting [start, end) on date.
func overlapFilter(resourceID, date string, start, end int) bson.M {
	return bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$ne": models.StatusCanceled},
		"start":       bson.M{"$lt": end},
		"end":         bson.M{"$gt": start},
	}
}
