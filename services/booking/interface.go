package booking

import (
	"context"

	"stayops/models"
)

// BookingService is the booking lifecycle manager: the only component that
// creates or mutates booking records. Every mutation re-validates against the
// availability index and the resource catalog before committing.
type BookingService interface {
	// Create reserves one resource window. The booking starts pending unless
	// input.PaymentRef is set (payment-first flow), in which case it is born
	// confirmed and paid.
	Create(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error)

	Get(ctx context.Context, bookingID string) (*models.Booking, error)

	// Cancel is permitted from pending, confirmed or rescheduled and is
	// idempotent: canceling an already-canceled booking returns it unchanged.
	Cancel(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error)

	// UpdateStatus enforces the transition table; moves into confirmed re-run
	// the overlap guard atomically.
	UpdateStatus(ctx context.Context, bookingID string, target models.BookingStatus, actor models.Actor) (*models.Booking, error)

	// Reschedule re-validates the new window before mutating; on conflict the
	// original booking is untouched. Guests may move only their own bookings.
	Reschedule(ctx context.Context, bookingID, newDate string, newStart, durationMinutes int, actor models.Actor) (*models.Booking, error)

	// FindAvailable is the availability index: resources of the kind with
	// enough capacity and no active booking overlapping the window. Always
	// recomputed from current state; this is the authoritative write-path view.
	FindAvailable(ctx context.Context, kind models.ResourceKind, date string, start, durationMinutes, minCapacity int) ([]models.Resource, error)

	// CachedAvailable serves UI reads from a short-lived cache. Advisory only;
	// never consulted by the write-path guard.
	CachedAvailable(ctx context.Context, kind models.ResourceKind, date string, start, durationMinutes, minCapacity int) ([]models.Resource, error)

	// ExpireStaleHolds releases pending bookings whose hold window has lapsed.
	// Advisory background work driven by the queue worker.
	ExpireStaleHolds(ctx context.Context) (int, error)
}
