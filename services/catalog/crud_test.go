package catalog

import (
	"context"
	"errors"
	"testing"

	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
)

func newTestCatalog() *DefaultCatalogService {
	return &DefaultCatalogService{Repo: resourceRepo.NewMemoryResourceRepo()}
}

func TestRegisterResourceAppliesDefaults(t *testing.T) {
	svc := newTestCatalog()

	res, err := svc.RegisterResource(context.Background(), models.Resource{
		Name: "Window table",
		Kind: models.KindTable,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.ID == "" {
		t.Fatal("expected a generated id")
	}
	if res.Capacity != 1 {
		t.Fatalf("expected default capacity 1, got %d", res.Capacity)
	}
	if res.OperationalStatus != models.OpAvailable {
		t.Fatalf("expected default status available, got %s", res.OperationalStatus)
	}
}

func TestRegisterResourceRejectsUnknownStatus(t *testing.T) {
	svc := newTestCatalog()

	_, err := svc.RegisterResource(context.Background(), models.Resource{
		Name:              "Bad",
		Kind:              models.KindRoom,
		OperationalStatus: "on-fire",
	})
	var unknown *ErrUnknownStatus
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestSetOperationalStatus(t *testing.T) {
	svc := newTestCatalog()
	ctx := context.Background()

	res, err := svc.RegisterResource(ctx, models.Resource{Name: "T1", Kind: models.KindTable})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.SetOperationalStatus(ctx, res.ID, models.OpCleaning)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.OperationalStatus != models.OpCleaning {
		t.Fatalf("expected cleaning, got %s", updated.OperationalStatus)
	}

	var unknown *ErrUnknownStatus
	if _, err := svc.SetOperationalStatus(ctx, res.ID, "sideways"); !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := svc.SetOperationalStatus(ctx, "missing", models.OpCleaning); !errors.Is(err, resourceRepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetireHidesResourceFromDefaultListing(t *testing.T) {
	svc := newTestCatalog()
	ctx := context.Background()

	res, err := svc.RegisterResource(ctx, models.Resource{Name: "T1", Kind: models.KindTable})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.RegisterResource(ctx, models.Resource{Name: "T2", Kind: models.KindTable}); err != nil {
		t.Fatalf("register: %v", err)
	}

	retired, err := svc.RetireResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("retire: %v", err)
	}
	if !retired.Retired {
		t.Fatal("expected retired flag set")
	}

	active, err := svc.ListResources(ctx, resourceRepo.ResourceFilter{Kind: models.KindTable})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected retired resource hidden, got %d resources", len(active))
	}

	all, err := svc.ListResources(ctx, resourceRepo.ResourceFilter{Kind: models.KindTable, IncludeRetired: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both resources with IncludeRetired, got %d", len(all))
	}
}
