package offsets

import (
	"context"
	"sync"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps offsets in a map, for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	offsets map[string]models.Offset
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{offsets: make(map[string]models.Offset)}
}

func (r *InMemoryRepository) Add(ctx context.Context, userID string, points, multipliedPoints, units int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offset := r.offsets[userID]
	offset.UserID = userID
	offset.Points += points
	offset.MultipliedPoints += multipliedPoints
	offset.Units += units
	r.offsets[userID] = offset
	return nil
}

func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*models.Offset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offset, ok := r.offsets[userID]
	if !ok {
		return &models.Offset{UserID: userID}, nil
	}
	return &offset, nil
}

func (r *InMemoryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.offsets, userID)
	return nil
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = make(map[string]models.Offset)
	return nil
}
