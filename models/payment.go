package models

import "time"

// PaymentOutcome is the terminal result of an external payment attempt.
type PaymentOutcome string

const (
	OutcomeSucceeded PaymentOutcome = "succeeded"
	OutcomeFailed    PaymentOutcome = "failed"
)

// PaymentAttempt is one external payment event correlated to a booking.
// Records are append-only; the attempt id is the checkout session id issued
// by the payment processor.
type PaymentAttempt struct {
	ID         string         `bson:"id" json:"id"`
	BookingID  string         `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Amount     float64        `bson:"amount" json:"amount"`
	Currency   string         `bson:"currency" json:"currency"`
	Outcome    PaymentOutcome `bson:"outcome" json:"outcome"`
	ReceivedAt time.Time      `bson:"received_at" json:"received_at"`
}

// PaymentEvent is a confirmation delivered by either the processor webhook or
// the client-redirect fallback. The booking correlation travels as explicit
// fields end-to-end; nothing is ever parsed out of the attempt id itself.
type PaymentEvent struct {
	AttemptID  string         `json:"attempt_id"`
	BookingID  string         `json:"booking_id,omitempty"` // set when paying for an existing pending booking

	GuestID    string         `json:"guest_id"`
	ServiceID  string         `json:"service_id"`
	ResourceID string         `json:"resource_id"`
	Date       string         `json:"date"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
	PartySize  int            `json:"party_size"`
	Amount     float64        `json:"amount"`
	Currency   string         `json:"currency"`
	Outcome    PaymentOutcome `json:"outcome"`
}
