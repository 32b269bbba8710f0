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

// InMemoryManager wires the in-memory repositories together. InTx is not
// transactional; administrative callers serialize through their own locks.
type InMemoryManager struct {
	teams     *teams.InMemoryRepository
	hardware  *hardware.InMemoryRepository
	users     *users.InMemoryRepository
	baselines *baselines.InMemoryRepository
	offsets   *offsets.InMemoryRepository
	snapshots *snapshots.InMemoryRepository
	retired   *retired.InMemoryRepository
	monthly   *monthly.InMemoryRepository
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		teams:     teams.NewInMemoryRepository(),
		hardware:  hardware.NewInMemoryRepository(),
		users:     users.NewInMemoryRepository(),
		baselines: baselines.NewInMemoryRepository(),
		offsets:   offsets.NewInMemoryRepository(),
		snapshots: snapshots.NewInMemoryRepository(),
		retired:   retired.NewInMemoryRepository(),
		monthly:   monthly.NewInMemoryRepository(),
	}
}

func (m *InMemoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryManager) Close() error                            { return nil }

func (m *InMemoryManager) Teams() teams.Repository            { return m.teams }
func (m *InMemoryManager) Hardware() hardware.Repository      { return m.hardware }
func (m *InMemoryManager) Users() users.Repository            { return m.users }
func (m *InMemoryManager) Baselines() baselines.Repository    { return m.baselines }
func (m *InMemoryManager) Offsets() offsets.Repository        { return m.offsets }
func (m *InMemoryManager) Snapshots() snapshots.Repository    { return m.snapshots }
func (m *InMemoryManager) Retired() retired.Repository        { return m.retired }
func (m *InMemoryManager) MonthlyResults() monthly.Repository { return m.monthly }

func (m *InMemoryManager) InTx(ctx context.Context, fn func(Manager) error) error {
	return fn(m)
}
