package notification

import (
	"context"

	"stayops/models"
	"stayops/utils"

	"go.uber.org/zap"
)

// NotificationService delivers booking state-change events to guests and
// staff. The lifecycle core only emits events; everything from here out is
// delivery plumbing.
type NotificationService interface {
	Notify(ctx context.Context, event models.BookingEventPayload) error
}

// DefaultNotificationService logs deliveries; push/email transports hang off
// this point.
type DefaultNotificationService struct{}

func (s *DefaultNotificationService) Notify(_ context.Context, event models.BookingEventPayload) error {
	utils.GetLogger().Info("booking event",
		zap.String("bookingId", event.BookingID),
		zap.String("guestId", event.GuestID),
		zap.String("event", event.Event),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)),
	)
	return nil
}
