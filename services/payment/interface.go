package payment

import (
	"context"

	"stayops/models"
)

// ReconcileResult is the outcome of processing one payment confirmation.
// Created is true exactly once per attempt id; replays return the existing
// booking with Created false.
type ReconcileResult struct {
	Created bool            `json:"created"`
	Booking *models.Booking `json:"booking"`
}

// ReconcileService turns external payment events into exactly one booking
// creation or confirmation per attempt id, tolerating duplicate and
// out-of-order delivery. The webhook and the client-redirect fallback both
// land here.
type ReconcileService interface {
	Reconcile(ctx context.Context, event models.PaymentEvent) (*ReconcileResult, error)
	// Refund marks the booking refunded without touching its lifecycle
	// status; a completed service may still be refunded.
	Refund(ctx context.Context, bookingID string) (*models.Booking, error)
}

// CheckoutInput is what the checkout surface needs to start a payment. The
// booking correlation travels in session metadata as explicit fields.
type CheckoutInput struct {
	GuestID    string  `json:"guest_id"`
	ServiceID  string  `json:"service_id"`
	ResourceID string  `json:"resource_id"`
	BookingID  string  `json:"booking_id,omitempty"`
	Date       string  `json:"date"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	PartySize  int     `json:"party_size"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	SuccessURL string  `json:"success_url"`
	CancelURL  string  `json:"cancel_url"`
}

// SessionVerifier resolves a checkout session id into a settled payment
// event, or an error when the session has not been paid. Used by the
// client-redirect fallback when the webhook has not yet been observed.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID string) (*models.PaymentEvent, error)
}
