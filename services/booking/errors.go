package booking

import (
	"fmt"
	"strings"

	"stayops/models"
)

// NotFoundError indicates an unknown booking or resource id.
type NotFoundError struct {
	Entity string // "booking" or "resource"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError indicates the overlap guard rejected a slot. Alternatives
// carries the availability index's current options so callers can offer them.
type ConflictError struct {
	ResourceID   string
	Date         string
	Start, End   int
	Alternatives []models.Resource
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s already booked on %s [%d, %d)", e.ResourceID, e.Date, e.Start, e.End)
}

// CapacityError indicates the party size exceeds the resource capacity.
type CapacityError struct {
	ResourceID string
	Capacity   int
	Requested  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("party of %d exceeds capacity %d of resource %s", e.Requested, e.Capacity, e.ResourceID)
}

// TransitionError indicates a status move absent from the transition table.
// Allowed lists the transitions that remain legal from the current state.
type TransitionError struct {
	From    models.BookingStatus
	To      models.BookingStatus
	Allowed []models.BookingStatus
}

func (e *TransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("transition %s -> %s not permitted; allowed: [%s]", e.From, e.To, strings.Join(allowed, ", "))
}

// ForbiddenError indicates the actor lacks the capability for the mutation.
type ForbiddenError struct {
	Actor  models.Actor
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("actor %s (%s) may not perform this action: %s", e.Actor.ID, e.Actor.Role, e.Reason)
}
