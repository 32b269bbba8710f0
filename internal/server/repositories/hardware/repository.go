// Package hardware persists the tracked hardware catalog, including the
// multipliers recomputed from the best-performing entry.
package hardware

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, hw *models.Hardware) error
	GetByID(ctx context.Context, id string) (*models.Hardware, error)
	GetByName(ctx context.Context, name string) (*models.Hardware, error)
	// List returns all tracked hardware ordered by creation time.
	List(ctx context.Context) ([]*models.Hardware, error)
	Update(ctx context.Context, hw *models.Hardware) error
	Delete(ctx context.Context, id string) error
}
