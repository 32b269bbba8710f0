package roster

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/cryptox"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/metrics"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/provider"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/avolkovs/teamcomp/internal/server/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu    sync.Mutex
	stats map[string]provider.CumulativeStats
	err   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{stats: make(map[string]provider.CumulativeStats)}
}

func (f *fakeProvider) set(foldingName string, points, units int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[foldingName] = provider.CumulativeStats{Points: points, Units: units}
}

func (f *fakeProvider) FetchCumulativeStats(_ context.Context, foldingName, _ string) (provider.CumulativeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return provider.CumulativeStats{}, f.err
	}
	return f.stats[foldingName], nil
}

type fixture struct {
	rm       *repositories.InMemoryManager
	provider *fakeProvider
	box      *cryptox.Box
	stats    *stats.Service
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rm:       repositories.NewInMemoryManager(),
		provider: newFakeProvider(),
	}
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	f.box = cryptox.NewBox([]byte("test-secret"))
	f.stats = stats.NewService(f.rm, f.provider, stats.NewGate(), f.box, log, metrics.New(), 1)
	f.svc = NewService(f.rm, f.provider, f.stats, f.box, log)
	return f
}

func (f *fixture) addHardware(t *testing.T, id string, averagePPD int64) {
	t.Helper()
	require.NoError(t, f.rm.Hardware().Create(context.Background(), &models.Hardware{
		ID: id, Name: id, Multiplier: 1, AveragePPD: averagePPD, CreatedAt: time.Now().UTC(),
	}))
}

func TestCreateUser_CapturesBaselineFromProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)

	f.provider.set("alice", 123456, 789)
	user, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", Passkey: "pk1", DisplayName: "Alice",
		Category: models.CategoryNvidiaGPU, TeamID: team.ID, HardwareID: "hw1",
	})
	require.NoError(t, err)

	baseline, err := f.rm.Baselines().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), baseline.Points)
	assert.Equal(t, int64(789), baseline.Units)

	// The new identity starts at zero: an unchanged provider total yields a
	// zero-valued first snapshot.
	require.NoError(t, f.stats.IngestUser(ctx, user))
	snap, err := f.rm.Snapshots().Latest(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Points)
	assert.Equal(t, int64(0), snap.Units)
}

func TestCreateUser_PasskeyStoredSealed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)
	f.provider.set("alice", 0, 0)

	user, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", Passkey: "pk1", DisplayName: "Alice",
		Category: models.CategoryNvidiaGPU, TeamID: team.ID, HardwareID: "hw1",
	})
	require.NoError(t, err)

	stored, err := f.rm.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pk1", stored.Passkey)

	plain, err := f.box.Open(stored.Passkey)
	require.NoError(t, err)
	assert.Equal(t, "pk1", string(plain))
}

func TestCreateUser_ProviderDownRejectsEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)
	f.provider.err = common.ErrProviderUnavailable

	_, err = f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", TeamID: team.ID, HardwareID: "hw1",
	})
	require.ErrorIs(t, err, common.ErrProviderUnavailable)

	list, err := f.rm.Users().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateUser_UnknownTeamOrHardware(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, NewUser{FoldingName: "a", TeamID: "nope", HardwareID: "hw1"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	_, err = f.svc.CreateUser(ctx, NewUser{FoldingName: "a", TeamID: team.ID, HardwareID: "nope"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteTeam_RefusedWhileUsersRemain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)
	f.provider.set("alice", 0, 0)
	user, err := f.svc.CreateUser(ctx, NewUser{FoldingName: "alice", TeamID: team.ID, HardwareID: "hw1"})
	require.NoError(t, err)

	err = f.svc.DeleteTeam(ctx, team.ID)
	require.ErrorIs(t, err, common.ErrInvalidState)

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))
	require.NoError(t, f.svc.DeleteTeam(ctx, team.ID))
}

func TestDeleteUser_FreezesContributionForTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)
	f.provider.set("alice", 1000, 10)
	user, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", DisplayName: "Alice", TeamID: team.ID, HardwareID: "hw1",
	})
	require.NoError(t, err)

	f.provider.set("alice", 1500, 15)
	require.NoError(t, f.stats.IngestUser(ctx, user))

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))

	_, err = f.rm.Users().GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.rm.Baselines().GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.rm.Snapshots().Latest(ctx, user.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	frozen, err := f.rm.Retired().ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, frozen, 1)
	assert.Equal(t, int64(500), frozen[0].MultipliedPoints)
	assert.Equal(t, int64(5), frozen[0].Units)
	assert.Equal(t, "Alice", frozen[0].DisplayName)
	assert.Equal(t, "a***e", frozen[0].MaskedName)

	// The frozen share still counts for the team.
	totals, err := f.stats.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, totals.Teams, 1)
	assert.Equal(t, int64(500), totals.Teams[0].MultipliedPoints)
}

func TestDeleteUser_ReactivationCreditsNewTeamOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alpha, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	beta, err := f.svc.CreateTeam(ctx, "beta", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)

	f.provider.set("alice", 1000, 10)
	user, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", DisplayName: "Alice", TeamID: alpha.ID, HardwareID: "hw1",
	})
	require.NoError(t, err)

	f.provider.set("alice", 1500, 15)
	require.NoError(t, f.stats.IngestUser(ctx, user))
	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))

	// The same identity re-enrolls with another team. The fresh baseline
	// swallows everything earned so far, so only work done after this
	// point counts for the new team.
	reborn, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "alice", DisplayName: "Alice", TeamID: beta.ID, HardwareID: "hw1",
	})
	require.NoError(t, err)
	require.NotEqual(t, user.ID, reborn.ID)

	f.provider.set("alice", 1800, 18)
	require.NoError(t, f.stats.IngestUser(ctx, reborn))

	totals, err := f.stats.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, totals.Teams, 2)

	// Old team keeps exactly the frozen share, nothing more.
	assert.Equal(t, int64(500), totals.Teams[0].MultipliedPoints)
	assert.Equal(t, int64(5), totals.Teams[0].Units)
	assert.Empty(t, totals.Teams[0].Active)
	require.Len(t, totals.Teams[0].Retired, 1)

	// New team gets only the post-reactivation delta.
	assert.Equal(t, int64(300), totals.Teams[1].MultipliedPoints)
	assert.Equal(t, int64(3), totals.Teams[1].Units)
	assert.Empty(t, totals.Teams[1].Retired)
}

func TestDeleteUser_NoContributionLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)
	f.provider.set("alice", 1000, 10)
	user, err := f.svc.CreateUser(ctx, NewUser{FoldingName: "alice", TeamID: team.ID, HardwareID: "hw1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))

	frozen, err := f.rm.Retired().ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, frozen)
}

func TestHasActiveCaptain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, "alpha", "", "")
	require.NoError(t, err)
	f.addHardware(t, "hw1", 1000)

	ok, err := f.svc.HasActiveCaptain(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	f.provider.set("cap", 0, 0)
	captain, err := f.svc.CreateUser(ctx, NewUser{
		FoldingName: "cap", TeamID: team.ID, HardwareID: "hw1", IsCaptain: true,
	})
	require.NoError(t, err)

	ok, err = f.svc.HasActiveCaptain(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Retiring the captain clears the flag for the team.
	require.NoError(t, f.svc.DeleteUser(ctx, captain.ID))
	ok, err = f.svc.HasActiveCaptain(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.HasActiveCaptain(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMaskIdentity(t *testing.T) {
	assert.Equal(t, "a***e", MaskIdentity("alice"))
	assert.Equal(t, "b*b", MaskIdentity("bob"))
	assert.Equal(t, "**", MaskIdentity("ab"))
	assert.Equal(t, "*", MaskIdentity("a"))
	assert.Equal(t, "", MaskIdentity(""))
}
