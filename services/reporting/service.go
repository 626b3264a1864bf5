package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	bookingRepo "stayops/database/repository/booking"
	"stayops/models"
)

// ReportingService is the read side: dashboard listings, summary tiles and
// exports. Pure reads over the booking store; no ordering guarantee beyond
// stability for a fixed snapshot.
type ReportingService interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	Aggregate(ctx context.Context, filter models.BookingFilter) (models.StatusCounts, error)
	ExportCSV(ctx context.Context, filter models.BookingFilter) ([]byte, error)
}

// DefaultReportingService implements ReportingService.
type DefaultReportingService struct {
	Repo bookingRepo.BookingRepository
}

func (s *DefaultReportingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return s.Repo.List(ctx, filter)
}

func (s *DefaultReportingService) Aggregate(ctx context.Context, filter models.BookingFilter) (models.StatusCounts, error) {
	return s.Repo.CountByStatus(ctx, filter)
}

// ExportCSV projects the filtered listing into CSV for admin downloads.
func (s *DefaultReportingService) ExportCSV(ctx context.Context, filter models.BookingFilter) ([]byte, error) {
	bookings, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "guest_id", "resource_id", "resource_kind", "service_id", "date", "start", "end", "party_size", "status", "payment_status", "amount_paid", "currency", "created_at"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, b := range bookings {
		row := []string{
			b.ID,
			b.GuestID,
			b.ResourceID,
			string(b.Kind),
			b.ServiceID,
			b.Date,
			strconv.Itoa(b.Start),
			strconv.Itoa(b.End),
			strconv.Itoa(b.PartySize),
			string(b.Status),
			string(b.Payment),
			strconv.FormatFloat(b.AmountPaid, 'f', 2, 64),
			b.Currency,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
