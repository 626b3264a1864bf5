package paymentRepo

import (
	"context"
	"sync"

	"stayops/models"
)

// MemoryPaymentAttemptRepo is an in-memory PaymentAttemptRepository.
type MemoryPaymentAttemptRepo struct {
	mu   sync.Mutex
	byID map[string]models.PaymentAttempt
}

// NewMemoryPaymentAttemptRepo constructs an empty in-memory repository.
func NewMemoryPaymentAttemptRepo() *MemoryPaymentAttemptRepo {
	return &MemoryPaymentAttemptRepo{byID: make(map[string]models.PaymentAttempt)}
}

func (repo *MemoryPaymentAttemptRepo) Record(_ context.Context, a *models.PaymentAttempt) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byID[a.ID]; exists {
		return nil // append-only, replay is a no-op
	}
	repo.byID[a.ID] = *a
	return nil
}

func (repo *MemoryPaymentAttemptRepo) GetByID(_ context.Context, id string) (*models.PaymentAttempt, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	a, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}
