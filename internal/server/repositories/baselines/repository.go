// Package baselines persists the per-user raw reference values against which
// competition deltas are computed.
package baselines

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	// Upsert replaces the user's baseline wholesale.
	Upsert(ctx context.Context, baseline *models.Baseline) error
	GetByUserID(ctx context.Context, userID string) (*models.Baseline, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
