package catalog

import (
	"context"

	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
)

// CatalogService manages the finite inventory of bookable resources.
type CatalogService interface {
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	ListResources(ctx context.Context, filter resourceRepo.ResourceFilter) ([]models.Resource, error)
	RegisterResource(ctx context.Context, r models.Resource) (*models.Resource, error)
	// SetOperationalStatus flips the staff-facing status only; it never
	// cancels or creates bookings.
	SetOperationalStatus(ctx context.Context, id string, status models.OperationalStatus) (*models.Resource, error)
	RetireResource(ctx context.Context, id string) (*models.Resource, error)
}

// DefaultCatalogService implements CatalogService.
type DefaultCatalogService struct {
	Repo resourceRepo.ResourceRepository
}
