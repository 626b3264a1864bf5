package tasks

import (
	"encoding/json"
	"time"

	"stayops/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingEvent  = "booking:event"
	TypeBookingExpire = "booking:expire"
)

// NewBookingEventTask builds a task carrying a state-change event for the
// notification worker.
func NewBookingEventTask(payload models.BookingEventPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingEvent, b), nil
}

// NewExpireTask builds a hold-expiry task scheduled for fireAt.
func NewExpireTask(payload models.ExpirePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
