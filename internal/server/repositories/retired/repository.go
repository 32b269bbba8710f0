// Package retired persists the frozen contributions of users removed from
// the roster mid-period.
package retired

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, snapshot *models.RetiredUserSnapshot) error
	// ListByTeam returns the team's retired snapshots ordered by retirement time.
	ListByTeam(ctx context.Context, teamID string) ([]*models.RetiredUserSnapshot, error)
	DeleteAll(ctx context.Context) error
}
