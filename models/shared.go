package models

import "time"

// Role is the capability level of an already-authenticated actor. Resolving
// identity is a collaborator's job; the core only consumes the result.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system" // background sweeps, payment reconciliation
)

// Actor identifies who is asking for a mutation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Staff reports whether the actor may act on bookings it does not own.
func (a Actor) Staff() bool {
	return a.Role == RoleAdmin || a.Role == RoleVendor || a.Role == RoleSystem
}

// CreateBookingInput carries everything needed to reserve one resource window.
// PaymentRef/AmountPaid/Currency are set by payment reconciliation for the
// payment-first flow: the booking is born confirmed/paid and carries the
// attempt id.
type CreateBookingInput struct {
	GuestID         string  `json:"guest_id"`
	ResourceID      string  `json:"resource_id"`
	ServiceID       string  `json:"service_id"`
	Date            string  `json:"date"`
	Start           int     `json:"start"`
	DurationMinutes int     `json:"duration_minutes"`
	PartySize       int     `json:"party_size"`
	Notes           string  `json:"notes,omitempty"`
	PaymentRef      string  `json:"payment_ref,omitempty"`
	AmountPaid      float64 `json:"amount_paid,omitempty"`
	Currency        string  `json:"currency,omitempty"`
}

// BookingFilter narrows read-side listing and aggregation. Zero values mean
// "no constraint" for that dimension.
type BookingFilter struct {
	Status       BookingStatus `json:"status,omitempty" form:"status"`
	ResourceKind ResourceKind  `json:"resource_kind,omitempty" form:"resource_kind"`
	GuestID      string        `json:"guest_id,omitempty" form:"guest_id"`
	DateFrom     string        `json:"date_from,omitempty" form:"date_from"`
	DateTo       string        `json:"date_to,omitempty" form:"date_to"`
	SearchText   string        `json:"search_text,omitempty" form:"search_text"`
}

// StatusCounts backs the dashboard summary tiles.
type StatusCounts struct {
	Pending     int64 `json:"pending"`
	Confirmed   int64 `json:"confirmed"`
	Completed   int64 `json:"completed"`
	Canceled    int64 `json:"canceled"`
	Rescheduled int64 `json:"rescheduled"`
	Total       int64 `json:"total"`
}

// BookingEventPayload is what the core emits on every state change; delivery
// (push, email, toast) is the worker's job, not the core's.
type BookingEventPayload struct {
	BookingID  string        `json:"booking_id"`
	GuestID    string        `json:"guest_id"`
	ResourceID string        `json:"resource_id"`
	Event      string        `json:"event"` // created, status_changed, payment_updated
	From       BookingStatus `json:"from,omitempty"`
	To         BookingStatus `json:"to,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ExpirePayload carries a scheduled hold-expiry task for a pending booking.
type ExpirePayload struct {
	BookingID string `json:"booking_id"`
}
