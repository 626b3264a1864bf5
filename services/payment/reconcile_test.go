package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "stayops/database/repository/booking"
	paymentRepo "stayops/database/repository/payment"
	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
	"stayops/services/booking"
	"stayops/services/tasks"
)

type reconcileFixture struct {
	svc      *DefaultReconcileService
	bookings booking.BookingService
	repo     bookingRepo.BookingRepository
	attempts paymentRepo.PaymentAttemptRepository
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	repo := bookingRepo.NewMemoryBookingRepo()
	resources := resourceRepo.NewMemoryResourceRepo()
	attempts := paymentRepo.NewMemoryPaymentAttemptRepo()

	err := resources.Create(context.Background(), &models.Resource{
		ID:                "room-1",
		Name:              "room-1",
		Kind:              models.KindRoom,
		Capacity:          2,
		OperationalStatus: models.OpAvailable,
	})
	if err != nil {
		t.Fatalf("seed resource: %v", err)
	}

	bookingSvc := &booking.DefaultBookingService{
		Repo:       repo,
		Resources:  resources,
		Queue:      tasks.NopQueue{},
		HoldWindow: 30 * time.Minute,
	}
	return &reconcileFixture{
		svc: &DefaultReconcileService{
			Bookings: bookingSvc,
			Repo:     repo,
			Attempts: attempts,
		},
		bookings: bookingSvc,
		repo:     repo,
		attempts: attempts,
	}
}

func paidEvent(attemptID string) models.PaymentEvent {
	return models.PaymentEvent{
		AttemptID:  attemptID,
		GuestID:    "guest-1",
		ServiceID:  "massage",
		ResourceID: "room-1",
		Date:       "2026-09-20",
		Start:      14 * 60,
		End:        15 * 60,
		PartySize:  1,
		Amount:     80,
		Currency:   "usd",
		Outcome:    models.OutcomeSucceeded,
	}
}

func TestReconcilePaymentFirstCreatesConfirmedBooking(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	res, err := f.svc.Reconcile(ctx, paidEvent("cs_alpha"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !res.Created {
		t.Fatal("first delivery should create the booking")
	}
	b := res.Booking
	if b.Status != models.StatusConfirmed || b.Payment != models.PayPaid {
		t.Fatalf("expected confirmed/paid, got %s/%s", b.Status, b.Payment)
	}
	if b.PaymentRef != "cs_alpha" || b.AmountPaid != 80 {
		t.Fatalf("payment not stamped: %+v", b)
	}

	attempt, err := f.attempts.GetByID(ctx, "cs_alpha")
	if err != nil {
		t.Fatalf("attempt lookup: %v", err)
	}
	if attempt.Outcome != models.OutcomeSucceeded || attempt.BookingID != b.ID {
		t.Fatalf("attempt not recorded against booking: %+v", attempt)
	}
}

func TestReconcileReplaysAreNoOps(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, paidEvent("cs_alpha"))
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := f.svc.Reconcile(ctx, paidEvent("cs_alpha"))
	if err != nil {
		t.Fatalf("replay reconcile: %v", err)
	}
	if second.Created {
		t.Fatal("replay must not create a second booking")
	}
	if second.Booking.ID != first.Booking.ID {
		t.Fatalf("replay resolved to a different booking: %s vs %s", second.Booking.ID, first.Booking.ID)
	}

	all, err := f.repo.List(ctx, models.BookingFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one booking after replay, got %d", len(all))
	}
}

func TestReconcileConcurrentDeliveriesCreateOneBooking(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	const deliveries = 12
	var wg sync.WaitGroup
	results := make([]*ReconcileResult, deliveries)
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Reconcile(ctx, paidEvent("cs_raced"))
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < deliveries; i++ {
		if errs[i] != nil {
			t.Fatalf("delivery %d failed: %v", i, errs[i])
		}
		if results[i].Created {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one creation across deliveries, got %d", created)
	}

	all, err := f.repo.List(ctx, models.BookingFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one booking, got %d", len(all))
	}
}

func TestReconcileConfirmsExistingPendingBooking(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	pending, err := f.bookings.Create(ctx, models.CreateBookingInput{
		GuestID:         "guest-1",
		ResourceID:      "room-1",
		ServiceID:       "massage",
		Date:            "2026-09-20",
		Start:           14 * 60,
		DurationMinutes: 60,
		PartySize:       1,
	})
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}

	event := paidEvent("cs_beta")
	event.BookingID = pending.ID
	res, err := f.svc.Reconcile(ctx, event)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Created {
		t.Fatal("paying an existing booking must not create a new one")
	}
	if res.Booking.ID != pending.ID {
		t.Fatalf("resolved wrong booking: %s", res.Booking.ID)
	}
	if res.Booking.Status != models.StatusConfirmed || res.Booking.Payment != models.PayPaid {
		t.Fatalf("expected confirmed/paid, got %s/%s", res.Booking.Status, res.Booking.Payment)
	}
}

func TestReconcileFailureKeepsBookingPending(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	pending, err := f.bookings.Create(ctx, models.CreateBookingInput{
		GuestID:         "guest-1",
		ResourceID:      "room-1",
		ServiceID:       "massage",
		Date:            "2026-09-20",
		Start:           14 * 60,
		DurationMinutes: 60,
		PartySize:       1,
	})
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}

	event := paidEvent("cs_failed")
	event.BookingID = pending.ID
	event.Outcome = models.OutcomeFailed
	_, err = f.svc.Reconcile(ctx, event)
	var failure *FailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected FailureError, got %v", err)
	}

	got, err := f.repo.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("failed payment must not move lifecycle status, got %s", got.Status)
	}
	if got.Payment != models.PayFailed {
		t.Fatalf("expected payment status failed, got %s", got.Payment)
	}

	// The failed attempt is still auditable.
	if _, err := f.attempts.GetByID(ctx, "cs_failed"); err != nil {
		t.Fatalf("failed attempt not recorded: %v", err)
	}
}

func TestRefundLeavesLifecycleStatusAlone(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	res, err := f.svc.Reconcile(ctx, paidEvent("cs_refund"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	refunded, err := f.svc.Refund(ctx, res.Booking.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Payment != models.PayRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Payment)
	}
	if refunded.Status != models.StatusConfirmed {
		t.Fatalf("refund must not change lifecycle status, got %s", refunded.Status)
	}
}

func TestRefundUnknownBooking(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.svc.Refund(context.Background(), "missing")
	var notFound *booking.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
