package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "stayops/database/repository/booking"
	paymentRepo "stayops/database/repository/payment"
	"stayops/models"
	"stayops/services/booking"
	"stayops/utils"
)

// FailureError indicates the attempt's outcome was failed. The booking, if
// one was pending for the attempt, keeps its pending status so a retry can
// reuse it.
type FailureError struct {
	AttemptID string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("payment attempt %s failed", e.AttemptID)
}

// DefaultReconcileService implements ReconcileService.
type DefaultReconcileService struct {
	Bookings booking.BookingService
	Repo     bookingRepo.BookingRepository
	Attempts paymentRepo.PaymentAttemptRepository
}

func (s *DefaultReconcileService) logger() *zap.Logger {
	return utils.GetLogger()
}

// record appends the attempt to the audit log; replays are no-ops.
func (s *DefaultReconcileService) record(ctx context.Context, event models.PaymentEvent, bookingID string) {
	err := s.Attempts.Record(ctx, &models.PaymentAttempt{
		ID:         event.AttemptID,
		BookingID:  bookingID,
		Amount:     event.Amount,
		Currency:   event.Currency,
		Outcome:    event.Outcome,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		s.logger().Warn("failed to record payment attempt", zap.String("attemptId", event.AttemptID), zap.Error(err))
	}
}

// Reconcile converges both payment confirmation paths onto one idempotent
// outcome per attempt id.
func (s *DefaultReconcileService) Reconcile(ctx context.Context, event models.PaymentEvent) (*ReconcileResult, error) {
	if event.AttemptID == "" {
		return nil, fmt.Errorf("payment event missing attempt id")
	}

	if event.Outcome == models.OutcomeFailed {
		return nil, s.reconcileFailure(ctx, event)
	}

	// Fast path: this attempt already produced a booking.
	if existing, err := s.Repo.GetByPaymentRef(ctx, event.AttemptID); err == nil {
		return &ReconcileResult{Created: false, Booking: existing}, nil
	} else if err != bookingRepo.ErrNotFound {
		return nil, fmt.Errorf("payment ref lookup failed: %w", err)
	}

	if event.BookingID != "" {
		return s.confirmExisting(ctx, event)
	}
	return s.createFromEvent(ctx, event)
}

// confirmExisting settles a payment against a booking that already holds its
// slot (a pending booking the guest paid for after creation).
func (s *DefaultReconcileService) confirmExisting(ctx context.Context, event models.PaymentEvent) (*ReconcileResult, error) {
	b, err := s.Repo.AttachPayment(ctx, event.BookingID, event.AttemptID, event.Amount, event.Currency)
	if err != nil {
		if err == bookingRepo.ErrDuplicatePaymentRef {
			// Lost the race to a concurrent delivery of the same attempt.
			existing, gerr := s.Repo.GetByPaymentRef(ctx, event.AttemptID)
			if gerr != nil {
				return nil, fmt.Errorf("duplicate payment ref but no booking found: %w", gerr)
			}
			return &ReconcileResult{Created: false, Booking: existing}, nil
		}
		if err == bookingRepo.ErrNotFound {
			return nil, &booking.NotFoundError{Entity: "booking", ID: event.BookingID}
		}
		return nil, fmt.Errorf("failed to attach payment: %w", err)
	}

	if b.Status == models.StatusPending {
		confirmed, err := s.Bookings.UpdateStatus(ctx, b.ID, models.StatusConfirmed, models.Actor{ID: "payments", Role: models.RoleSystem})
		if err != nil {
			// Payment is settled either way; surface the booking as-is.
			s.logger().Warn("paid booking could not be confirmed", zap.String("bookingId", b.ID), zap.Error(err))
		} else {
			b = confirmed
		}
	}

	s.record(ctx, event, b.ID)
	s.logger().Info("payment reconciled against existing booking",
		zap.String("attemptId", event.AttemptID),
		zap.String("bookingId", b.ID),
	)
	return &ReconcileResult{Created: false, Booking: b}, nil
}

// createFromEvent is the payment-first flow: the settled attempt births a
// confirmed booking. The unique payment_ref index makes the check-then-create
// atomic per attempt id.
func (s *DefaultReconcileService) createFromEvent(ctx context.Context, event models.PaymentEvent) (*ReconcileResult, error) {
	b, err := s.Bookings.Create(ctx, models.CreateBookingInput{
		GuestID:         event.GuestID,
		ResourceID:      event.ResourceID,
		ServiceID:       event.ServiceID,
		Date:            event.Date,
		Start:           event.Start,
		DurationMinutes: event.End - event.Start,
		PartySize:       event.PartySize,
		PaymentRef:      event.AttemptID,
		AmountPaid:      event.Amount,
		Currency:        event.Currency,
	})
	if err != nil {
		// A concurrent delivery of the same attempt may win either as a
		// duplicate payment ref or, because its booking now holds the same
		// window, as an overlap conflict. Both resolve to the winner.
		var conflict *booking.ConflictError
		if err == bookingRepo.ErrDuplicatePaymentRef || errors.As(err, &conflict) {
			existing, gerr := s.Repo.GetByPaymentRef(ctx, event.AttemptID)
			if gerr == nil {
				return &ReconcileResult{Created: false, Booking: existing}, nil
			}
			if gerr != bookingRepo.ErrNotFound {
				return nil, fmt.Errorf("payment ref lookup failed: %w", gerr)
			}
		}
		return nil, err
	}

	s.record(ctx, event, b.ID)
	s.logger().Info("payment reconciled into new booking",
		zap.String("attemptId", event.AttemptID),
		zap.String("bookingId", b.ID),
	)
	return &ReconcileResult{Created: true, Booking: b}, nil
}

// reconcileFailure marks a pending booking's payment failed without touching
// its lifecycle status; a human may retry payment and reuse the booking.
func (s *DefaultReconcileService) reconcileFailure(ctx context.Context, event models.PaymentEvent) error {
	s.record(ctx, event, event.BookingID)

	if event.BookingID != "" {
		if _, err := s.Repo.SetPaymentStatus(ctx, event.BookingID, models.PayFailed); err != nil && err != bookingRepo.ErrNotFound {
			s.logger().Warn("failed to mark booking payment failed", zap.String("bookingId", event.BookingID), zap.Error(err))
		}
	}
	s.logger().Info("payment attempt failed", zap.String("attemptId", event.AttemptID))
	return &FailureError{AttemptID: event.AttemptID}
}

// Refund marks the booking refunded. Cancellation stays a separate explicit
// action.
func (s *DefaultReconcileService) Refund(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.SetPaymentStatus(ctx, bookingID, models.PayRefunded)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, &booking.NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, fmt.Errorf("failed to refund booking %s: %w", bookingID, err)
	}
	s.logger().Info("booking refunded", zap.String("bookingId", bookingID))
	return b, nil
}
