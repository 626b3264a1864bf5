package resourceRepo

import (
	"context"
	"sort"
	"sync"

	"stayops/models"
)

// MemoryResourceRepo is an in-memory ResourceRepository for tests and
// single-node development.
type MemoryResourceRepo struct {
	mu   sync.RWMutex
	byID map[string]*models.Resource
}

// NewMemoryResourceRepo constructs an empty in-memory repository.
func NewMemoryResourceRepo() *MemoryResourceRepo {
	return &MemoryResourceRepo{byID: make(map[string]*models.Resource)}
}

func cloneResource(r *models.Resource) *models.Resource {
	cp := *r
	if r.Attributes != nil {
		cp.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

func (repo *MemoryResourceRepo) GetByID(_ context.Context, id string) (*models.Resource, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	r, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneResource(r), nil
}

func (repo *MemoryResourceRepo) List(_ context.Context, f ResourceFilter) ([]models.Resource, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var out []models.Resource
	for _, r := range repo.byID {
		if f.Kind != "" && r.Kind != f.Kind {
			continue
		}
		if f.MinCapacity > 0 && r.Capacity < f.MinCapacity {
			continue
		}
		if r.Retired && !f.IncludeRetired {
			continue
		}
		matched := true
		for k, v := range f.Attributes {
			if r.Attributes[k] != v {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, *cloneResource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (repo *MemoryResourceRepo) Create(_ context.Context, r *models.Resource) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.byID[r.ID] = cloneResource(r)
	return nil
}

func (repo *MemoryResourceRepo) SetOperationalStatus(_ context.Context, id string, status models.OperationalStatus) (*models.Resource, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	r, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.OperationalStatus = status
	return cloneResource(r), nil
}

func (repo *MemoryResourceRepo) SetRetired(_ context.Context, id string, retired bool) (*models.Resource, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	r, ok := repo.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Retired = retired
	return cloneResource(r), nil
}
