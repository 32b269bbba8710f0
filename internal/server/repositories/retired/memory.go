package retired

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps retired snapshots in a slice, for tests and local runs.
type InMemoryRepository struct {
	mu        sync.RWMutex
	snapshots []models.RetiredUserSnapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(ctx context.Context, snapshot *models.RetiredUserSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, *snapshot)
	return nil
}

func (r *InMemoryRepository) list(filter func(models.RetiredUserSnapshot) bool) []*models.RetiredUserSnapshot {
	var result []*models.RetiredUserSnapshot
	for i := range r.snapshots {
		if filter == nil || filter(r.snapshots[i]) {
			snapshot := r.snapshots[i]
			result = append(result, &snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RetiredAt.Equal(result[j].RetiredAt) {
			return result[i].RetiredAt.Before(result[j].RetiredAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *InMemoryRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.RetiredUserSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(s models.RetiredUserSnapshot) bool { return s.TeamID == teamID }), nil
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = nil
	return nil
}
