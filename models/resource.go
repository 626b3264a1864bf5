package models

import "time"

// ResourceKind enumerates the bookable resource types the platform manages.
type ResourceKind string

const (
	KindTable     ResourceKind = "table"
	KindRoom      ResourceKind = "room"
	KindTherapist ResourceKind = "therapist"
	KindVehicle   ResourceKind = "vehicle"
)

// OperationalStatus is the staff-facing state of a resource. It is informational
// only: marking a table "cleaning" does not touch existing bookings, it only
// affects whether new walk-in assignment is offered.
type OperationalStatus string

const (
	OpAvailable   OperationalStatus = "available"
	OpReserved    OperationalStatus = "reserved"
	OpOccupied    OperationalStatus = "occupied"
	OpCleaning    OperationalStatus = "cleaning"
	OpMaintenance OperationalStatus = "maintenance"
	OpOffDuty     OperationalStatus = "off-duty"
)

func (s OperationalStatus) Valid() bool {
	switch s {
	case OpAvailable, OpReserved, OpOccupied, OpCleaning, OpMaintenance, OpOffDuty:
		return true
	}
	return false
}

// Resource is one bookable unit: a restaurant table, a room, a therapist slot
// or a vehicle. Capacity is seats for tables and 1 for non-capacity kinds.
type Resource struct {
	ID                string            `bson:"id" json:"id"`
	Name              string            `bson:"name" json:"name"`
	Kind              ResourceKind      `bson:"kind" json:"kind"`
	Capacity          int               `bson:"capacity" json:"capacity"`
	Attributes        map[string]string `bson:"attributes,omitempty" json:"attributes,omitempty"` // location, specialty, etc.
	OperationalStatus OperationalStatus `bson:"operational_status" json:"operational_status"`
	Retired           bool              `bson:"retired,omitempty" json:"retired,omitempty"` // soft-retire; never deleted while bookings reference it
	CreatedAt         time.Time         `bson:"created_at" json:"created_at"`
}
