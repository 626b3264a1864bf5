package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending     BookingStatus = "pending"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCompleted   BookingStatus = "completed"
	StatusCanceled    BookingStatus = "canceled"
	StatusRescheduled BookingStatus = "rescheduled"
)

// Terminal reports whether no further transition is permitted out of s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// PaymentStatus tracks settlement independently of lifecycle status. A
// completed service may still be refunded, so the two never move in lockstep.
type PaymentStatus string

const (
	PayUnpaid   PaymentStatus = "unpaid"
	PayPaid     PaymentStatus = "paid"
	PayFailed   PaymentStatus = "failed"
	PayRefunded PaymentStatus = "refunded"
)

// Booking is one reservation of exactly one resource by one guest for one
// time window. Start/End are minutes from midnight on Date ("YYYY-MM-DD").
type Booking struct {
	ID         string        `bson:"id" json:"id"`
	GuestID    string        `bson:"guest_id" json:"guest_id"`
	ResourceID string        `bson:"resource_id" json:"resource_id"`
	Kind       ResourceKind  `bson:"resource_kind" json:"resource_kind"` // denormalized from the resource so read-side filters never join
	ServiceID  string        `bson:"service_id" json:"service_id"` // what is performed: dinner, massage, work-order type
	Date       string        `bson:"date" json:"date"`
	Start      int           `bson:"start" json:"start"`
	End        int           `bson:"end" json:"end"`
	PartySize  int           `bson:"party_size" json:"party_size"`
	Status     BookingStatus `bson:"status" json:"status"`
	Payment    PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentRef string        `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"` // external attempt id; unique when set
	AmountPaid float64       `bson:"amount_paid,omitempty" json:"amount_paid,omitempty"`
	Currency   string        `bson:"currency,omitempty" json:"currency,omitempty"`
	Notes      string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the booking's window intersects [start, end) on date.
func (b *Booking) Overlaps(date string, start, end int) bool {
	return b.Date == date && b.Start < end && b.End > start
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status != StatusCanceled
}
