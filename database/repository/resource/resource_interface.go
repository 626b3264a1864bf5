package resourceRepo

import (
	"context"
	"errors"

	"stayops/models"
)

// ErrNotFound indicates no resource matched the given id.
var ErrNotFound = errors.New("resource not found")

// ResourceFilter narrows catalog listings.
type ResourceFilter struct {
	Kind        models.ResourceKind
	MinCapacity int
	Attributes  map[string]string
	// IncludeRetired lists soft-retired resources too; dashboards want them,
	// the availability index never does.
	IncludeRetired bool
}

// ResourceRepository stores the finite inventory of bookable resources.
// Read-mostly; writes are catalog setup and staff status flips.
type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, filter ResourceFilter) ([]models.Resource, error)
	Create(ctx context.Context, r *models.Resource) error
	SetOperationalStatus(ctx context.Context, id string, status models.OperationalStatus) (*models.Resource, error)
	SetRetired(ctx context.Context, id string, retired bool) (*models.Resource, error)
}
