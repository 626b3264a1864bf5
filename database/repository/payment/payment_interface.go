package paymentRepo

import (
	"context"
	"errors"

	"stayops/models"
)

// ErrNotFound indicates no attempt matched the given id.
var ErrNotFound = errors.New("payment attempt not found")

// PaymentAttemptRepository is an append-only audit log of external payment
// events. Recording the same attempt id twice is a no-op, so replays leave a
// single record.
type PaymentAttemptRepository interface {
	Record(ctx context.Context, a *models.PaymentAttempt) error
	GetByID(ctx context.Context, id string) (*models.PaymentAttempt, error)
}
