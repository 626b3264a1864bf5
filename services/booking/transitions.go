package booking

import "stayops/models"

// validNext is the single transition table every surface goes through.
// completed and canceled are terminal.
var validNext = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.StatusPending: {
		models.StatusConfirmed: true,
		models.StatusCanceled:  true,
	},
	models.StatusConfirmed: {
		models.StatusCompleted:   true,
		models.StatusCanceled:    true,
		models.StatusRescheduled: true,
	},
	models.StatusRescheduled: {
		models.StatusConfirmed: true,
		models.StatusCanceled:  true,
	},
	models.StatusCompleted: {},
	models.StatusCanceled:  {},
}

// CanTransition reports whether the status move is in the table.
func CanTransition(from, to models.BookingStatus) bool {
	return validNext[from][to]
}

// NextStatuses returns the transitions that remain legal from the given state,
// in a fixed order.
func NextStatuses(from models.BookingStatus) []models.BookingStatus {
	order := []models.BookingStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusCompleted,
		models.StatusCanceled,
		models.StatusRescheduled,
	}
	var out []models.BookingStatus
	for _, s := range order {
		if validNext[from][s] {
			out = append(out, s)
		}
	}
	return out
}
