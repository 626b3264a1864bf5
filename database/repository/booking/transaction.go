package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"stayops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// withTransaction runs fn inside a mongo session transaction, aborting on error.
func (repo *MongoBookingRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// CreateIfFree inserts the booking unless its window collides with an active
// booking on the same resource. The overlap count and the insert commit as one
// transaction, so two concurrent creates for overlapping windows serialize and
// at most one succeeds.
func (repo *MongoBookingRepo) CreateIfFree(ctx context.Context, b *models.Booking) error {
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		n, err := repo.coll.CountDocuments(sc, overlapFilter(b.ResourceID, b.Date, b.Start, b.End))
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return ErrConflict
		}
		if _, err := repo.coll.InsertOne(sc, b); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicatePaymentRef
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	if err == ErrConflict || err == ErrDuplicatePaymentRef {
		return err
	}
	if err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// ConfirmIfFree re-runs the overlap guard (excluding the booking itself) and
// commits the status transition in the same transaction.
func (repo *MongoBookingRepo) ConfirmIfFree(ctx context.Context, id string, from models.BookingStatus) (*models.Booking, error) {
	var confirmed models.Booking
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var b models.Booking
		if err := repo.coll.FindOne(sc, bson.M{"id": id}).Decode(&b); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return fmt.Errorf("error fetching booking %s: %w", id, err)
		}

		filter := overlapFilter(b.ResourceID, b.Date, b.Start, b.End)
		filter["id"] = bson.M{"$ne": id}
		n, err := repo.coll.CountDocuments(sc, filter)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return ErrConflict
		}

		update := bson.M{"$set": bson.M{"status": models.StatusConfirmed, "updated_at": time.Now()}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := repo.coll.FindOneAndUpdate(sc, bson.M{"id": id, "status": from}, update, opts).Decode(&confirmed); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrStale
			}
			return fmt.Errorf("confirm update failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// RescheduleIfFree moves the booking to the new window if it is free; the
// original record is untouched on conflict.
func (repo *MongoBookingRepo) RescheduleIfFree(ctx context.Context, id, newDate string, newStart, newEnd int) (*models.Booking, error) {
	var moved models.Booking
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var b models.Booking
		if err := repo.coll.FindOne(sc, bson.M{"id": id}).Decode(&b); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return fmt.Errorf("error fetching booking %s: %w", id, err)
		}

		filter := overlapFilter(b.ResourceID, newDate, newStart, newEnd)
		filter["id"] = bson.M{"$ne": id}
		n, err := repo.coll.CountDocuments(sc, filter)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return ErrConflict
		}

		update := bson.M{"$set": bson.M{
			"date":       newDate,
			"start":      newStart,
			"end":        newEnd,
			"updated_at": time.Now(),
		}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := repo.coll.FindOneAndUpdate(sc, bson.M{"id": id}, update, opts).Decode(&moved); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return fmt.Errorf("reschedule update failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}
