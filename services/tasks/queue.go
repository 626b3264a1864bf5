package tasks

import (
	"context"
	"fmt"
	"time"

	"stayops/config"
	"stayops/models"

	"github.com/hibiken/asynq"
)

// Queue is how the lifecycle core hands work to the background worker:
// state-change events and scheduled hold expiries.
type Queue interface {
	Publish(ctx context.Context, event models.BookingEventPayload) error
	ScheduleExpiry(ctx context.Context, bookingID string, fireAt time.Time) error
}

// AsynqQueue enqueues tasks on the shared redis queue.
type AsynqQueue struct {
	client *asynq.Client
}

// NewAsynqQueue builds the queue client from app config.
func NewAsynqQueue() *AsynqQueue {
	return &AsynqQueue{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}),
	}
}

func (q *AsynqQueue) Publish(ctx context.Context, event models.BookingEventPayload) error {
	task, err := NewBookingEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build event task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue event task: %w", err)
	}
	return nil
}

func (q *AsynqQueue) ScheduleExpiry(ctx context.Context, bookingID string, fireAt time.Time) error {
	task, opts, err := NewExpireTask(models.ExpirePayload{BookingID: bookingID}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build expire task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue expire task: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

// NopQueue drops everything; used in tests.
type NopQueue struct{}

func (NopQueue) Publish(context.Context, models.BookingEventPayload) error { return nil }
func (NopQueue) ScheduleExpiry(context.Context, string, time.Time) error   { return nil }
