// Package snapshots persists the append-only per-user stats time series.
// Rows are never updated in place; the monthly reset is the only deletion.
package snapshots

import (
	"context"
	"time"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, snapshot *models.StatsSnapshot) error
	// Latest returns the newest snapshot for the user, or ErrorNotFound if
	// the user has no rows this period.
	Latest(ctx context.Context, userID string) (*models.StatsSnapshot, error)
	// ListBetween returns the user's snapshots with from <= ts < to,
	// ordered by timestamp ascending.
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.StatsSnapshot, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) error
}
