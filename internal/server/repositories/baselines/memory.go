package baselines

import (
	"context"
	"sync"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps baselines in a map, for tests and local runs.
type InMemoryRepository struct {
	mu        sync.RWMutex
	baselines map[string]models.Baseline
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{baselines: make(map[string]models.Baseline)}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, baseline *models.Baseline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baselines[baseline.UserID] = *baseline
	return nil
}

func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*models.Baseline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	baseline, ok := r.baselines[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &baseline, nil
}

func (r *InMemoryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.baselines, userID)
	return nil
}
