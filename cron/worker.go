package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"stayops/config"
	"stayops/models"
	"stayops/services/booking"
	"stayops/services/notification"
	"stayops/services/tasks"

	"github.com/hibiken/asynq"
)

// sweepInterval is the coarse safety net: even if a scheduled expiry task is
// lost, pending holds older than the window get released on the next sweep.
const sweepInterval = 5 * time.Minute

// InitBookingWorker runs the async worker in background: hold-window expiries
// and state-change event delivery.
func InitBookingWorker(bookingSvc booking.BookingService, notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, handleExpireTask(bookingSvc))
	mux.HandleFunc(tasks.TypeBookingEvent, handleEventTask(notifSvc))

	go runSweep(bookingSvc)

	// Start async worker with retry logic
	go func() {
		log.Println("[BookingWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpireHandler] Invalid payload: %v", err)
			return err
		}

		// The sweep re-checks the hold window itself; a booking confirmed
		// since the task was scheduled is simply skipped.
		released, err := bookingSvc.ExpireStaleHolds(ctx)
		if err != nil {
			log.Printf("[ExpireHandler] Sweep failed for booking %s: %v", p.BookingID, err)
			return err
		}
		if released > 0 {
			log.Printf("[ExpireHandler] Released %d stale holds (triggered by %s)", released, p.BookingID)
		}
		return nil
	}
}

func handleEventTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingEventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[EventHandler] Invalid payload: %v", err)
			return err
		}
		if err := notifSvc.Notify(ctx, p); err != nil {
			log.Printf("[EventHandler] Failed to deliver event for booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}

// runSweep periodically releases stale holds regardless of scheduled tasks.
func runSweep(bookingSvc booking.BookingService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := bookingSvc.ExpireStaleHolds(ctx); err != nil {
			log.Printf("[BookingWorker] Periodic sweep failed: %v", err)
		}
		cancel()
	}
}
