// Package teams persists the competing teams.
package teams

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	// List returns all teams ordered by creation time.
	List(ctx context.Context) ([]*models.Team, error)
	Delete(ctx context.Context, id string) error
}
