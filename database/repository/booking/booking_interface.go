package bookingRepo

import (
	"context"
	"errors"
	"time"

	"stayops/models"
)

var (
	// ErrNotFound indicates no booking matched the given id or payment ref.
	ErrNotFound = errors.New("booking not found")
	// ErrConflict indicates the target resource window is already held by an
	// active booking.
	ErrConflict = errors.New("resource window already booked")
	// ErrDuplicatePaymentRef indicates a booking already carries the payment
	// ref being inserted; the caller should re-read and treat the existing
	// record as the outcome.
	ErrDuplicatePaymentRef = errors.New("payment ref already recorded")
	// ErrStale indicates a compare-and-set lost to a concurrent transition.
	ErrStale = errors.New("booking state changed concurrently")
)

// BookingRepository is the only write path for booking records. Every
// conditional method commits its guard check and its write as one atomic unit,
// so the no-double-booking and idempotency invariants hold under concurrent
// callers.
type BookingRepository interface {
	// CreateIfFree inserts the booking unless an active booking overlaps its
	// window on the same resource (ErrConflict). When b.PaymentRef is set, a
	// uniqueness violation on it surfaces as ErrDuplicatePaymentRef.
	CreateIfFree(ctx context.Context, b *models.Booking) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentRef(ctx context.Context, ref string) (*models.Booking, error)

	// UpdateStatusCAS transitions status from -> to only if the current status
	// still equals from; otherwise ErrStale.
	UpdateStatusCAS(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)

	// ConfirmIfFree is UpdateStatusCAS(from -> confirmed) with the overlap
	// guard re-evaluated in the same unit (ErrConflict on violation).
	ConfirmIfFree(ctx context.Context, id string, from models.BookingStatus) (*models.Booking, error)

	// RescheduleIfFree moves the booking to the new window only if that window
	// is free; on ErrConflict the record is left untouched.
	RescheduleIfFree(ctx context.Context, id, newDate string, newStart, newEnd int) (*models.Booking, error)

	SetPaymentStatus(ctx context.Context, id string, to models.PaymentStatus) (*models.Booking, error)

	// AttachPayment stamps a settled payment onto an existing booking. The
	// unique index on payment_ref still applies (ErrDuplicatePaymentRef).
	AttachPayment(ctx context.Context, id, ref string, amount float64, currency string) (*models.Booking, error)

	FindOverlapping(ctx context.Context, resourceID, date string, start, end int) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	CountByStatus(ctx context.Context, filter models.BookingFilter) (models.StatusCounts, error)

	// ExpirePendingBefore cancels pending, unpaid bookings created before
	// cutoff and returns the ids it released.
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}
