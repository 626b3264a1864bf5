package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "stayops/database/repository/booking"
	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
	"stayops/services/tasks"
	"stayops/utils"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Resources resourceRepo.ResourceRepository
	Queue     tasks.Queue

	// Cache backs CachedAvailable; nil disables caching entirely.
	Cache *redis.Client

	// HoldWindow is how long a pending booking may hold its slot before the
	// expiry sweep releases it.
	HoldWindow time.Duration
}

func (s *DefaultBookingService) logger() *zap.Logger {
	return utils.GetLogger()
}

// resourceFor loads and validates the target resource for a mutation.
func (s *DefaultBookingService) resourceFor(ctx context.Context, resourceID string) (*models.Resource, error) {
	res, err := s.Resources.GetByID(ctx, resourceID)
	if err != nil {
		if err == resourceRepo.ErrNotFound {
			return nil, &NotFoundError{Entity: "resource", ID: resourceID}
		}
		return nil, fmt.Errorf("failed to fetch resource %s: %w", resourceID, err)
	}
	if res.Retired {
		return nil, &NotFoundError{Entity: "resource", ID: resourceID}
	}
	return res, nil
}

// conflict builds a ConflictError carrying the index's current alternatives.
func (s *DefaultBookingService) conflict(ctx context.Context, res *models.Resource, date string, start, end, partySize int) error {
	alts, err := s.FindAvailable(ctx, res.Kind, date, start, end-start, partySize)
	if err != nil {
		s.logger().Warn("failed to compute alternatives for conflict response", zap.Error(err))
	}
	return &ConflictError{
		ResourceID:   res.ID,
		Date:         date,
		Start:        start,
		End:          end,
		Alternatives: alts,
	}
}

func (s *DefaultBookingService) emit(ctx context.Context, b *models.Booking, event string, from, to models.BookingStatus) {
	err := s.Queue.Publish(ctx, models.BookingEventPayload{
		BookingID:  b.ID,
		GuestID:    b.GuestID,
		ResourceID: b.ResourceID,
		Event:      event,
		From:       from,
		To:         to,
		OccurredAt: time.Now(),
	})
	if err != nil {
		// Event delivery is best-effort; the booking mutation already committed.
		s.logger().Warn("failed to publish booking event", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

// Create reserves one resource window.
func (s *DefaultBookingService) Create(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error) {
	if input.DurationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", input.DurationMinutes)
	}
	if input.PartySize <= 0 {
		input.PartySize = 1
	}

	res, err := s.resourceFor(ctx, input.ResourceID)
	if err != nil {
		return nil, err
	}
	if res.Kind == models.KindTable && input.PartySize > res.Capacity {
		return nil, &CapacityError{ResourceID: res.ID, Capacity: res.Capacity, Requested: input.PartySize}
	}

	now := time.Now()
	b := &models.Booking{
		ID:         uuid.New().String(),
		GuestID:    input.GuestID,
		ResourceID: res.ID,
		Kind:       res.Kind,
		ServiceID:  input.ServiceID,
		Date:       input.Date,
		Start:      input.Start,
		End:        input.Start + input.DurationMinutes,
		PartySize:  input.PartySize,
		Status:     models.StatusPending,
		Payment:    models.PayUnpaid,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.PaymentRef != "" {
		// Payment-first flow: payment already settled, the booking is born confirmed.
		b.Status = models.StatusConfirmed
		b.Payment = models.PayPaid
		b.PaymentRef = input.PaymentRef
		b.AmountPaid = input.AmountPaid
		b.Currency = input.Currency
	}

	if err := s.Repo.CreateIfFree(ctx, b); err != nil {
		if err == bookingRepo.ErrConflict {
			return nil, s.conflict(ctx, res, b.Date, b.Start, b.End, b.PartySize)
		}
		if err == bookingRepo.ErrDuplicatePaymentRef {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger().Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("resourceId", b.ResourceID),
		zap.String("date", b.Date),
		zap.Int("start", b.Start),
		zap.Int("end", b.End),
		zap.String("status", string(b.Status)),
	)

	if b.Status == models.StatusPending && s.HoldWindow > 0 {
		if err := s.Queue.ScheduleExpiry(ctx, b.ID, now.Add(s.HoldWindow)); err != nil {
			s.logger().Warn("failed to schedule hold expiry", zap.String("bookingId", b.ID), zap.Error(err))
		}
		// Advisory hold marker for dashboards; the repo remains the authority.
		if s.Cache != nil {
			if err := s.Cache.Set(ctx, "hold:"+b.ID, b.ResourceID, s.HoldWindow).Err(); err != nil {
				s.logger().Warn("failed to set hold marker", zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
	}
	s.emit(ctx, b, "created", "", b.Status)
	return b, nil
}

// Get fetches a booking by id.
func (s *DefaultBookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, &NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, err
	}
	return b, nil
}

// Cancel releases the booking's slot. Idempotent: a duplicate cancel returns
// the already-canceled record, not an error.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() && b.GuestID != actor.ID {
		return nil, &ForbiddenError{Actor: actor, Reason: "guests may only cancel their own bookings"}
	}
	if b.Status == models.StatusCanceled {
		return b, nil
	}
	if !CanTransition(b.Status, models.StatusCanceled) {
		return nil, &TransitionError{From: b.Status, To: models.StatusCanceled, Allowed: NextStatuses(b.Status)}
	}

	updated, err := s.Repo.UpdateStatusCAS(ctx, bookingID, b.Status, models.StatusCanceled)
	if err != nil {
		if err == bookingRepo.ErrStale {
			// Lost a race; re-read and re-apply the idempotency rule.
			return s.Cancel(ctx, bookingID, actor)
		}
		return nil, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}

	s.logger().Info("booking canceled", zap.String("bookingId", bookingID), zap.String("actor", actor.ID))
	s.emit(ctx, updated, "status_changed", b.Status, models.StatusCanceled)
	return updated, nil
}

// UpdateStatus is the generic guarded transition entry point.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, bookingID string, target models.BookingStatus, actor models.Actor) (*models.Booking, error) {
	if target == models.StatusCanceled {
		return s.Cancel(ctx, bookingID, actor)
	}

	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() && b.GuestID != actor.ID {
		return nil, &ForbiddenError{Actor: actor, Reason: "only staff may move others' bookings"}
	}
	if !CanTransition(b.Status, target) {
		return nil, &TransitionError{From: b.Status, To: target, Allowed: NextStatuses(b.Status)}
	}

	var updated *models.Booking
	if target == models.StatusConfirmed {
		// Every move into confirmed re-runs the overlap guard atomically.
		updated, err = s.Repo.ConfirmIfFree(ctx, bookingID, b.Status)
	} else {
		updated, err = s.Repo.UpdateStatusCAS(ctx, bookingID, b.Status, target)
	}
	if err != nil {
		switch err {
		case bookingRepo.ErrConflict:
			res, rerr := s.Resources.GetByID(ctx, b.ResourceID)
			if rerr != nil {
				return nil, &ConflictError{ResourceID: b.ResourceID, Date: b.Date, Start: b.Start, End: b.End}
			}
			return nil, s.conflict(ctx, res, b.Date, b.Start, b.End, b.PartySize)
		case bookingRepo.ErrStale:
			current, gerr := s.Get(ctx, bookingID)
			if gerr != nil {
				return nil, gerr
			}
			return nil, &TransitionError{From: current.Status, To: target, Allowed: NextStatuses(current.Status)}
		case bookingRepo.ErrNotFound:
			return nil, &NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, fmt.Errorf("failed to update booking %s status: %w", bookingID, err)
	}

	s.logger().Info("booking status updated",
		zap.String("bookingId", bookingID),
		zap.String("from", string(b.Status)),
		zap.String("to", string(target)),
		zap.String("actor", actor.ID),
	)
	s.emit(ctx, updated, "status_changed", b.Status, target)
	return updated, nil
}

// Reschedule moves a confirmed booking to a new window. The new slot is
// validated atomically; on conflict the original booking is left untouched.
func (s *DefaultBookingService) Reschedule(ctx context.Context, bookingID, newDate string, newStart, durationMinutes int, actor models.Actor) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() && b.GuestID != actor.ID {
		return nil, &ForbiddenError{Actor: actor, Reason: "guests may only reschedule their own bookings"}
	}
	if !CanTransition(b.Status, models.StatusRescheduled) {
		return nil, &TransitionError{From: b.Status, To: models.StatusRescheduled, Allowed: NextStatuses(b.Status)}
	}
	if durationMinutes <= 0 {
		durationMinutes = b.End - b.Start
	}
	newEnd := newStart + durationMinutes

	moved, err := s.Repo.RescheduleIfFree(ctx, bookingID, newDate, newStart, newEnd)
	if err != nil {
		if err == bookingRepo.ErrConflict {
			res, rerr := s.Resources.GetByID(ctx, b.ResourceID)
			if rerr != nil {
				return nil, &ConflictError{ResourceID: b.ResourceID, Date: newDate, Start: newStart, End: newEnd}
			}
			return nil, s.conflict(ctx, res, newDate, newStart, newEnd, b.PartySize)
		}
		if err == bookingRepo.ErrNotFound {
			return nil, &NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, fmt.Errorf("failed to reschedule booking %s: %w", bookingID, err)
	}

	// The move committed; record the lifecycle round-trip. Re-confirmation
	// re-runs the overlap guard, which the new window already passed. A lost
	// CAS means a concurrent transition owns the status now; the window move
	// itself stands either way.
	if _, err := s.Repo.UpdateStatusCAS(ctx, bookingID, b.Status, models.StatusRescheduled); err != nil {
		s.logger().Warn("reschedule status round-trip lost a race",
			zap.String("bookingId", bookingID), zap.Error(err))
	} else if confirmed, cerr := s.Repo.ConfirmIfFree(ctx, bookingID, models.StatusRescheduled); cerr != nil {
		s.logger().Warn("failed to re-confirm rescheduled booking",
			zap.String("bookingId", bookingID), zap.Error(cerr))
	} else {
		moved = confirmed
	}

	s.logger().Info("booking rescheduled",
		zap.String("bookingId", bookingID),
		zap.String("date", newDate),
		zap.Int("start", newStart),
		zap.Int("end", newEnd),
	)
	s.emit(ctx, moved, "status_changed", b.Status, moved.Status)
	return moved, nil
}

// ExpireStaleHolds cancels pending unpaid bookings older than the hold window.
func (s *DefaultBookingService) ExpireStaleHolds(ctx context.Context) (int, error) {
	if s.HoldWindow <= 0 {
		return 0, nil
	}
	released, err := s.Repo.ExpirePendingBefore(ctx, time.Now().Add(-s.HoldWindow))
	if err != nil {
		return 0, fmt.Errorf("hold expiry sweep failed: %w", err)
	}
	for _, id := range released {
		if b, gerr := s.Repo.GetByID(ctx, id); gerr == nil {
			s.emit(ctx, b, "status_changed", models.StatusPending, models.StatusCanceled)
		}
	}
	if len(released) > 0 {
		s.logger().Info("expired stale holds", zap.Int("count", len(released)))
	}
	return len(released), nil
}
