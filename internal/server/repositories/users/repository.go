// Package users persists the active roster members.
package users

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// List returns all active users ordered by creation time.
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id string) error
	// HasCaptain reports whether the team currently has an active captain.
	HasCaptain(ctx context.Context, teamID string) (bool, error)
	// CountByHardware counts active users referencing the given hardware.
	CountByHardware(ctx context.Context, hardwareID string) (int64, error)
	CountByTeam(ctx context.Context, teamID string) (int64, error)
}
