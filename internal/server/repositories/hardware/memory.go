package hardware

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps hardware in a map, for tests and local runs.
type InMemoryRepository struct {
	mu sync.RWMutex
	hw map[string]models.Hardware
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{hw: make(map[string]models.Hardware)}
}

func (r *InMemoryRepository) Create(ctx context.Context, hw *models.Hardware) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hw[hw.ID] = *hw
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Hardware, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hw, ok := r.hw[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &hw, nil
}

func (r *InMemoryRepository) GetByName(ctx context.Context, name string) (*models.Hardware, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.hw {
		if r.hw[id].Name == name {
			hw := r.hw[id]
			return &hw, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.Hardware, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Hardware, 0, len(r.hw))
	for id := range r.hw {
		hw := r.hw[id]
		result = append(result, &hw)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, hw *models.Hardware) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.hw[hw.ID]
	if !ok {
		return common.ErrorNotFound
	}
	updated := *hw
	updated.Name = old.Name
	updated.CreatedAt = old.CreatedAt
	r.hw[hw.ID] = updated
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hw[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.hw, id)
	return nil
}
