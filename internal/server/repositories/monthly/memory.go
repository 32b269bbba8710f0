package monthly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps monthly results in a map, for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	results map[string]models.MonthlyResult
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{results: make(map[string]models.MonthlyResult)}
}

func key(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func (r *InMemoryRepository) Create(ctx context.Context, result *models.MonthlyResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[key(result.Year, result.Month)] = *result
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, year int, month time.Month) (*models.MonthlyResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[key(year, month)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &result, nil
}
