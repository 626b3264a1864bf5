package bookingRepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"stayops/models"
)

// MemoryBookingRepo is an in-memory BookingRepository. It honors the same
// atomicity contracts as the Mongo implementation (one mutex serializes every
// guard-check-plus-write), which makes it suitable both for tests and for
// single-node development without a database.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	byID     map[string]*models.Booking
	byPayRef map[string]string // payment ref -> booking id
}

// NewMemoryBookingRepo constructs an empty in-memory repository.
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		byID:     make(map[string]*models.Booking),
		byPayRef: make(map[string]string),
	}
}

func (repo *MemoryBookingRepo) overlapExists(resourceID, date string, start, end int, excludeID string) bool {
	for _, b := range repo.byID {
		if b.ID == excludeID || b.ResourceID != resourceID || !b.Active() {
			continue
		}
		if b.Overlaps(date, start, end) {
			return true
		}
	}
	return false
}

func clone(b *models.Booking) *models.Booking {
	cp := *b
	return &cp
}

func (repo *MemoryBookingRepo) CreateIfFree(_ context.Context, b *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if b.PaymentRef != "" {
		if _, dup := repo.byPayRef[b.PaymentRef]; dup {
			return ErrDuplicatePaymentRef
		}
	}
	if repo.overlapExists(b.ResourceID, b.Date, b.Start, b.End, "") {
		return ErrConflict
	}

	repo.byID[b.ID] = clone(b)
	if b.PaymentRef != "" {
		repo.byPayRef[b.PaymentRef] = b.ID
	}
	return nil
}

func (repo *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (repo *MemoryBookingRepo) GetByPaymentRef(_ context.Context, ref string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	id, ok := repo.byPayRef[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(repo.byID[id]), nil
}

func (repo *MemoryBookingRepo) UpdateStatusCAS(_ context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, ErrStale
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return clone(b), nil
}

func (repo *MemoryBookingRepo) ConfirmIfFree(_ context.Context, id string, from models.BookingStatus) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if repo.overlapExists(b.ResourceID, b.Date, b.Start, b.End, id) {
		return nil, ErrConflict
	}
	if b.Status != from {
		return nil, ErrStale
	}
	b.Status = models.StatusConfirmed
	b.UpdatedAt = time.Now()
	return clone(b), nil
}

func (repo *MemoryBookingRepo) RescheduleIfFree(_ context.Context, id, newDate string, newStart, newEnd int) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if repo.overlapExists(b.ResourceID, newDate, newStart, newEnd, id) {
		return nil, ErrConflict
	}
	b.Date = newDate
	b.Start = newStart
	b.End = newEnd
	b.UpdatedAt = time.Now()
	return clone(b), nil
}

func (repo *MemoryBookingRepo) SetPaymentStatus(_ context.Context, id string, to models.PaymentStatus) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Payment = to
	b.UpdatedAt = time.Now()
	return clone(b), nil
}

func (repo *MemoryBookingRepo) AttachPayment(_ context.Context, id, ref string, amount float64, currency string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, dup := repo.byPayRef[ref]; dup && owner != id {
		return nil, ErrDuplicatePaymentRef
	}
	b.PaymentRef = ref
	b.Payment = models.PayPaid
	b.AmountPaid = amount
	b.Currency = currency
	b.UpdatedAt = time.Now()
	repo.byPayRef[ref] = id
	return clone(b), nil
}

func (repo *MemoryBookingRepo) FindOverlapping(_ context.Context, resourceID, date string, start, end int) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Booking
	for _, b := range repo.byID {
		if b.ResourceID == resourceID && b.Active() && b.Overlaps(date, start, end) {
			out = append(out, *clone(b))
		}
	}
	return out, nil
}

func matches(b *models.Booking, f models.BookingFilter) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.ResourceKind != "" && b.Kind != f.ResourceKind {
		return false
	}
	if f.GuestID != "" && b.GuestID != f.GuestID {
		return false
	}
	if f.DateFrom != "" && b.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && b.Date > f.DateTo {
		return false
	}
	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		hay := strings.ToLower(b.ID + " " + b.GuestID + " " + b.ServiceID + " " + b.Notes)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func (repo *MemoryBookingRepo) List(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Booking
	for _, b := range repo.byID {
		if matches(b, f) {
			out = append(out, *clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (repo *MemoryBookingRepo) CountByStatus(_ context.Context, f models.BookingFilter) (models.StatusCounts, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var counts models.StatusCounts
	f.Status = "" // the aggregation buckets by status itself
	for _, b := range repo.byID {
		if !matches(b, f) {
			continue
		}
		switch b.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusConfirmed:
			counts.Confirmed++
		case models.StatusCompleted:
			counts.Completed++
		case models.StatusCanceled:
			counts.Canceled++
		case models.StatusRescheduled:
			counts.Rescheduled++
		}
		counts.Total++
	}
	return counts, nil
}

func (repo *MemoryBookingRepo) ExpirePendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var released []string
	for _, b := range repo.byID {
		if b.Status == models.StatusPending && b.Payment == models.PayUnpaid && b.CreatedAt.Before(cutoff) {
			b.Status = models.StatusCanceled
			b.UpdatedAt = time.Now()
			released = append(released, b.ID)
		}
	}
	return released, nil
}
