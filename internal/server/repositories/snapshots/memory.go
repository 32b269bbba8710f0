package snapshots

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// InMemoryRepository keeps the time series in per-user slices, for tests and
// local runs. Slices are kept sorted by timestamp.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string][]models.StatsSnapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string][]models.StatsSnapshot)}
}

func (r *InMemoryRepository) Append(ctx context.Context, snapshot *models.StatsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := append(r.rows[snapshot.UserID], *snapshot)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })
	r.rows[snapshot.UserID] = rows
	return nil
}

func (r *InMemoryRepository) Latest(ctx context.Context, userID string) (*models.StatsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.rows[userID]
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	latest := rows[len(rows)-1]
	return &latest, nil
}

func (r *InMemoryRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.StatsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.StatsSnapshot
	for _, row := range r.rows[userID] {
		if row.Timestamp.Before(from) || !row.Timestamp.Before(to) {
			continue
		}
		row := row
		result = append(result, &row)
	}
	return result, nil
}

func (r *InMemoryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, userID)
	return nil
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[string][]models.StatsSnapshot)
	return nil
}
