// Package monthly persists the immutable per-period leaderboard archives.
package monthly

import (
	"context"
	"time"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, result *models.MonthlyResult) error
	Get(ctx context.Context, year int, month time.Month) (*models.MonthlyResult, error)
}
