package users

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps users in a map, for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &user, nil
}

func (r *InMemoryRepository) list(filter func(models.User) bool) []*models.User {
	result := make([]*models.User, 0, len(r.users))
	for id := range r.users {
		user := r.users[id]
		if filter == nil || filter(user) {
			result = append(result, &user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(nil), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *InMemoryRepository) HasCaptain(ctx context.Context, teamID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.users {
		if r.users[id].TeamID == teamID && r.users[id].IsCaptain {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) CountByHardware(ctx context.Context, hardwareID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for id := range r.users {
		if r.users[id].HardwareID == hardwareID {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) CountByTeam(ctx context.Context, teamID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for id := range r.users {
		if r.users[id].TeamID == teamID {
			n++
		}
	}
	return n, nil
}
