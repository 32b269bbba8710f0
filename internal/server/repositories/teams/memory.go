package teams

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps teams in a map, for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	teams map[string]models.Team
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{teams: make(map[string]models.Team)}
}

func (r *InMemoryRepository) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams[team.ID] = *team
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &team, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Team, 0, len(r.teams))
	for id := range r.teams {
		team := r.teams[id]
		result = append(result, &team)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.teams, id)
	return nil
}
