package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
	"stayops/utils"
)

// ErrUnknownStatus is returned for an operational status outside the set.
type ErrUnknownStatus struct {
	Status models.OperationalStatus
}

func (e *ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown operational status %q", e.Status)
}

// GetResource fetches one resource by id.
func (s *DefaultCatalogService) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	return s.Repo.GetByID(ctx, id)
}

// ListResources returns the catalog slice matching the filter. Finite and
// non-lazy; dashboards render it as a grid.
func (s *DefaultCatalogService) ListResources(ctx context.Context, filter resourceRepo.ResourceFilter) ([]models.Resource, error) {
	return s.Repo.List(ctx, filter)
}

// RegisterResource adds a new bookable unit to the catalog.
func (s *DefaultCatalogService) RegisterResource(ctx context.Context, r models.Resource) (*models.Resource, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Capacity <= 0 {
		r.Capacity = 1
	}
	if r.OperationalStatus == "" {
		r.OperationalStatus = models.OpAvailable
	}
	if !r.OperationalStatus.Valid() {
		return nil, &ErrUnknownStatus{Status: r.OperationalStatus}
	}
	r.CreatedAt = time.Now()

	if err := s.Repo.Create(ctx, &r); err != nil {
		return nil, fmt.Errorf("failed to register resource: %w", err)
	}
	utils.GetLogger().Info("resource registered",
		zap.String("resourceId", r.ID),
		zap.String("kind", string(r.Kind)),
		zap.Int("capacity", r.Capacity),
	)
	return &r, nil
}

// SetOperationalStatus flips the staff-facing status. A table marked
// "cleaning" keeps its existing reservations; the flag only steers new
// walk-in assignment.
func (s *DefaultCatalogService) SetOperationalStatus(ctx context.Context, id string, status models.OperationalStatus) (*models.Resource, error) {
	if !status.Valid() {
		return nil, &ErrUnknownStatus{Status: status}
	}
	res, err := s.Repo.SetOperationalStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("resource status updated",
		zap.String("resourceId", id),
		zap.String("status", string(status)),
	)
	return res, nil
}

// RetireResource soft-retires a resource; bookings referencing it survive.
func (s *DefaultCatalogService) RetireResource(ctx context.Context, id string) (*models.Resource, error) {
	res, err := s.Repo.SetRetired(ctx, id, true)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("resource retired", zap.String("resourceId", id))
	return res, nil
}
