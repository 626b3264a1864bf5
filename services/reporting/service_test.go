package reporting

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	bookingRepo "stayops/database/repository/booking"
	"stayops/models"
)

func seedBookings(t *testing.T, repo bookingRepo.BookingRepository) {
	t.Helper()
	rows := []models.Booking{
		{ID: "b-1", GuestID: "guest-1", ResourceID: "table-1", Kind: models.KindTable, ServiceID: "dinner", Date: "2026-09-10", Start: 1140, End: 1230, PartySize: 2, Status: models.StatusConfirmed, Payment: models.PayPaid},
		{ID: "b-2", GuestID: "guest-2", ResourceID: "table-2", Kind: models.KindTable, ServiceID: "dinner", Date: "2026-09-11", Start: 1140, End: 1230, PartySize: 4, Status: models.StatusPending, Payment: models.PayUnpaid},
		{ID: "b-3", GuestID: "guest-1", ResourceID: "room-1", Kind: models.KindRoom, ServiceID: "massage", Date: "2026-09-12", Start: 600, End: 660, PartySize: 1, Status: models.StatusCanceled, Payment: models.PayRefunded},
	}
	for i := range rows {
		rows[i].CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		rows[i].UpdatedAt = rows[i].CreatedAt
		if err := repo.CreateIfFree(context.Background(), &rows[i]); err != nil {
			t.Fatalf("seed %s: %v", rows[i].ID, err)
		}
	}
}

func TestListFilters(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seedBookings(t, repo)
	svc := &DefaultReportingService{Repo: repo}
	ctx := context.Background()

	byKind, err := svc.List(ctx, models.BookingFilter{ResourceKind: models.KindTable})
	if err != nil {
		t.Fatalf("list by kind: %v", err)
	}
	if len(byKind) != 2 {
		t.Fatalf("expected 2 table bookings, got %d", len(byKind))
	}

	byGuest, err := svc.List(ctx, models.BookingFilter{GuestID: "guest-1"})
	if err != nil {
		t.Fatalf("list by guest: %v", err)
	}
	if len(byGuest) != 2 {
		t.Fatalf("expected 2 bookings for guest-1, got %d", len(byGuest))
	}

	byDate, err := svc.List(ctx, models.BookingFilter{DateFrom: "2026-09-11", DateTo: "2026-09-12"})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("expected 2 bookings in range, got %d", len(byDate))
	}

	bySearch, err := svc.List(ctx, models.BookingFilter{SearchText: "massage"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != "b-3" {
		t.Fatalf("expected b-3 for search, got %+v", bySearch)
	}
}

func TestAggregateCounts(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seedBookings(t, repo)
	svc := &DefaultReportingService{Repo: repo}

	counts, err := svc.Aggregate(context.Background(), models.BookingFilter{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if counts.Confirmed != 1 || counts.Pending != 1 || counts.Canceled != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.Total != 3 {
		t.Fatalf("expected total 3, got %d", counts.Total)
	}
}

func TestExportCSVShape(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seedBookings(t, repo)
	svc := &DefaultReportingService{Repo: repo}

	data, err := svc.ExportCSV(context.Background(), models.BookingFilter{Status: models.StatusConfirmed})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if records[0][0] != "id" || records[0][9] != "status" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "b-1" || records[1][9] != "confirmed" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}
