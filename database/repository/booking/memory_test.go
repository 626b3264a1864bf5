package bookingRepo

import (
	"context"
	"testing"
	"time"

	"stayops/models"
)

func seed(t *testing.T, repo *MemoryBookingRepo, b models.Booking) *models.Booking {
	t.Helper()
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if b.Payment == "" {
		b.Payment = models.PayUnpaid
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if err := repo.CreateIfFree(context.Background(), &b); err != nil {
		t.Fatalf("seed %s: %v", b.ID, err)
	}
	return &b
}

func TestCreateIfFreeRejectsOverlap(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "table-1", Date: "2026-09-10", Start: 600, End: 660})

	err := repo.CreateIfFree(context.Background(), &models.Booking{
		ID: "b-2", ResourceID: "table-1", Date: "2026-09-10", Start: 630, End: 690,
		Status: models.StatusPending,
	})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Different resource, same window: fine.
	err = repo.CreateIfFree(context.Background(), &models.Booking{
		ID: "b-3", ResourceID: "table-2", Date: "2026-09-10", Start: 630, End: 690,
		Status: models.StatusPending,
	})
	if err != nil {
		t.Fatalf("different resource should be free: %v", err)
	}
}

func TestCanceledBookingsDoNotBlock(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "table-1", Date: "2026-09-10", Start: 600, End: 660, Status: models.StatusCanceled})

	err := repo.CreateIfFree(context.Background(), &models.Booking{
		ID: "b-2", ResourceID: "table-1", Date: "2026-09-10", Start: 600, End: 660,
		Status: models.StatusPending,
	})
	if err != nil {
		t.Fatalf("canceled booking must not hold the slot: %v", err)
	}
}

func TestCreateIfFreeRejectsDuplicatePaymentRef(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "table-1", Date: "2026-09-10", Start: 600, End: 660, PaymentRef: "cs_1"})

	err := repo.CreateIfFree(context.Background(), &models.Booking{
		ID: "b-2", ResourceID: "table-9", Date: "2026-10-01", Start: 600, End: 660,
		Status: models.StatusPending, PaymentRef: "cs_1",
	})
	if err != ErrDuplicatePaymentRef {
		t.Fatalf("expected ErrDuplicatePaymentRef, got %v", err)
	}

	got, err := repo.GetByPaymentRef(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("get by ref: %v", err)
	}
	if got.ID != "b-1" {
		t.Fatalf("ref resolves to wrong booking: %s", got.ID)
	}
}

func TestUpdateStatusCASStale(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "table-1", Date: "2026-09-10", Start: 600, End: 660})
	ctx := context.Background()

	if _, err := repo.UpdateStatusCAS(ctx, "b-1", models.StatusPending, models.StatusConfirmed); err != nil {
		t.Fatalf("first cas: %v", err)
	}
	if _, err := repo.UpdateStatusCAS(ctx, "b-1", models.StatusPending, models.StatusCanceled); err != ErrStale {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if _, err := repo.UpdateStatusCAS(ctx, "missing", models.StatusPending, models.StatusCanceled); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRescheduleIfFree(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "room-1", Date: "2026-09-10", Start: 600, End: 660, Status: models.StatusConfirmed})
	seed(t, repo, models.Booking{ID: "b-2", ResourceID: "room-1", Date: "2026-09-10", Start: 720, End: 780, Status: models.StatusConfirmed})
	ctx := context.Background()

	// Into the blocker's window: refused, record untouched.
	if _, err := repo.RescheduleIfFree(ctx, "b-1", "2026-09-10", 720, 780); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ := repo.GetByID(ctx, "b-1")
	if got.Start != 600 || got.End != 660 {
		t.Fatalf("failed reschedule mutated window: %+v", got)
	}

	// Sliding within its own window is never a self-conflict.
	moved, err := repo.RescheduleIfFree(ctx, "b-1", "2026-09-10", 630, 690)
	if err != nil {
		t.Fatalf("self-overlapping reschedule: %v", err)
	}
	if moved.Start != 630 || moved.End != 690 {
		t.Fatalf("window not moved: %+v", moved)
	}
}

func TestAttachPaymentEnforcesUniqueRef(t *testing.T) {
	repo := NewMemoryBookingRepo()
	seed(t, repo, models.Booking{ID: "b-1", ResourceID: "room-1", Date: "2026-09-10", Start: 600, End: 660, PaymentRef: "cs_1", Status: models.StatusConfirmed, Payment: models.PayPaid})
	seed(t, repo, models.Booking{ID: "b-2", ResourceID: "room-2", Date: "2026-09-10", Start: 600, End: 660})
	ctx := context.Background()

	if _, err := repo.AttachPayment(ctx, "b-2", "cs_1", 50, "usd"); err != ErrDuplicatePaymentRef {
		t.Fatalf("expected ErrDuplicatePaymentRef, got %v", err)
	}

	b, err := repo.AttachPayment(ctx, "b-2", "cs_2", 50, "usd")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if b.Payment != models.PayPaid || b.PaymentRef != "cs_2" || b.AmountPaid != 50 {
		t.Fatalf("payment not stamped: %+v", b)
	}
}

func TestExpirePendingBefore(t *testing.T) {
	repo := NewMemoryBookingRepo()
	old := time.Now().Add(-time.Hour)
	seed(t, repo, models.Booking{ID: "stale", ResourceID: "t-1", Date: "2026-09-10", Start: 600, End: 660, CreatedAt: old})
	seed(t, repo, models.Booking{ID: "fresh", ResourceID: "t-2", Date: "2026-09-10", Start: 600, End: 660})
	seed(t, repo, models.Booking{ID: "paid", ResourceID: "t-3", Date: "2026-09-10", Start: 600, End: 660, CreatedAt: old, Payment: models.PayPaid})

	released, err := repo.ExpirePendingBefore(context.Background(), time.Now().Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(released) != 1 || released[0] != "stale" {
		t.Fatalf("expected only the stale hold released, got %v", released)
	}

	got, _ := repo.GetByID(context.Background(), "stale")
	if got.Status != models.StatusCanceled {
		t.Fatalf("expected canceled, got %s", got.Status)
	}
}
