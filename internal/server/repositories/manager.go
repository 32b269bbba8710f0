// Package repositories wires the per-aggregate repositories behind a single
// manager so services can depend on one storage handle. A Postgres-backed
// manager is used in production and an in-memory one in tests.
package repositories

import (
	"context"

	"github.com/avolkovs/teamcomp/internal/server/repositories/baselines"
	"github.com/avolkovs/teamcomp/internal/server/repositories/hardware"
	"github.com/avolkovs/teamcomp/internal/server/repositories/monthly"
	"github.com/avolkovs/teamcomp/internal/server/repositories/offsets"
	"github.com/avolkovs/teamcomp/internal/server/repositories/retired"
	"github.com/avolkovs/teamcomp/internal/server/repositories/snapshots"
	"github.com/avolkovs/teamcomp/internal/server/repositories/teams"
	"github.com/avolkovs/teamcomp/internal/server/repositories/users"
)

type Manager interface {
	RunMigrations(ctx context.Context) error
	Close() error

	Teams() teams.Repository
	Hardware() hardware.Repository
	Users() users.Repository
	Baselines() baselines.Repository
	Offsets() offsets.Repository
	Snapshots() snapshots.Repository
	Retired() retired.Repository
	MonthlyResults() monthly.Repository

	// InTx runs fn against a manager whose repositories share one
	// transaction, committing on success and rolling back on error.
	InTx(ctx context.Context, fn func(Manager) error) error
}
