// Package offsets persists manual administrative point adjustments. Offsets
// are additive and applied at read time, never baked into snapshots.
package offsets

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	// Add accumulates the given deltas into the user's offset record.
	Add(ctx context.Context, userID string, points, multipliedPoints, units int64) error
	// GetByUserID returns the user's offset, or a zero offset if none exists.
	GetByUserID(ctx context.Context, userID string) (*models.Offset, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) error
}
