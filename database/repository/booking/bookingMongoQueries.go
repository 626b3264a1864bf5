package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"stayops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOverlapping returns the active bookings intersecting [start, end) on
// date for the given resource.
func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, resourceID, date string, start, end int) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, overlapFilter(resourceID, date, start, end))
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding overlapping bookings: %w", err)
	}
	return out, nil
}

func listFilter(f models.BookingFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ResourceKind != "" {
		filter["resource_kind"] = f.ResourceKind
	}
	if f.GuestID != "" {
		filter["guest_id"] = f.GuestID
	}
	if f.DateFrom != "" || f.DateTo != "" {
		dr := bson.M{}
		if f.DateFrom != "" {
			dr["$gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dr["$lte"] = f.DateTo
		}
		filter["date"] = dr
	}
	if f.SearchText != "" {
		re := primitive.Regex{Pattern: f.SearchText, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"id": re},
			bson.M{"guest_id": re},
			bson.M{"service_id": re},
			bson.M{"notes": re},
		}
	}
	return filter
}

// List returns bookings matching the filter, newest first.
func (repo *MongoBookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return out, nil
}

// CountByStatus aggregates bookings matching the filter into per-status counts.
func (repo *MongoBookingRepo) CountByStatus(ctx context.Context, f models.BookingFilter) (models.StatusCounts, error) {
	var counts models.StatusCounts

	match := listFilter(f)
	delete(match, "status") // the aggregation buckets by status itself

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return counts, fmt.Errorf("error aggregating booking counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.BookingStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return counts, fmt.Errorf("error decoding booking counts: %w", err)
	}

	for _, r := range rows {
		switch r.Status {
		case models.StatusPending:
			counts.Pending = r.Count
		case models.StatusConfirmed:
			counts.Confirmed = r.Count
		case models.StatusCompleted:
			counts.Completed = r.Count
		case models.StatusCanceled:
			counts.Canceled = r.Count
		case models.StatusRescheduled:
			counts.Rescheduled = r.Count
		}
		counts.Total += r.Count
	}
	return counts, nil
}

// ExpirePendingBefore cancels pending, unpaid bookings created before cutoff
// and returns the released ids. Each booking is canceled with a CAS on its
// pending status, so a concurrent confirmation wins over the sweep.
func (repo *MongoBookingRepo) ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	filter := bson.M{
		"status":         models.StatusPending,
		"payment_status": models.PayUnpaid,
		"created_at":     bson.M{"$lt": cutoff},
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding stale holds: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []models.Booking
	if err := cursor.All(ctx, &stale); err != nil {
		return nil, fmt.Errorf("error decoding stale holds: %w", err)
	}

	var released []string
	for _, b := range stale {
		if _, err := repo.UpdateStatusCAS(ctx, b.ID, models.StatusPending, models.StatusCanceled); err != nil {
			if err == ErrStale || err == ErrNotFound {
				continue // confirmed or removed while sweeping
			}
			return released, err
		}
		released = append(released, b.ID)
	}
	return released, nil
}
