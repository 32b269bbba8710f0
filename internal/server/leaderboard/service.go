// Package leaderboard ranks teams and categories from the current totals and
// owns the monthly rollover: persisting the final standings, archiving them
// and resetting the period.
package leaderboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/archive"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/avolkovs/teamcomp/internal/server/stats"
)

type Service struct {
	rm       repositories.Manager
	stats    *stats.Service
	uploader *archive.S3Uploader
	log      logging.Logger

	now func() time.Time
}

func NewService(rm repositories.Manager, statsSvc *stats.Service, uploader *archive.S3Uploader, log logging.Logger) *Service {
	return &Service{
		rm:       rm,
		stats:    statsSvc,
		uploader: uploader,
		log:      log,
		now:      time.Now,
	}
}

// TeamLeaderboard ranks all teams by multiplied points descending. Tied teams
// share a rank; within a tie, creation order holds.
func (s *Service) TeamLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	totals, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return teamEntries(totals), nil
}

func teamEntries(totals *stats.Totals) []models.LeaderboardEntry {
	ordered := make([]stats.TeamEntry, len(totals.Teams))
	copy(ordered, totals.Teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MultipliedPoints > ordered[j].MultipliedPoints
	})

	points := make([]int64, len(ordered))
	for i := range ordered {
		points[i] = ordered[i].MultipliedPoints
	}
	ranks := stats.AssignRanks(points)

	entries := make([]models.LeaderboardEntry, len(ordered))
	for i, te := range ordered {
		entries[i] = models.LeaderboardEntry{
			Rank:             ranks[i],
			TeamID:           te.Team.ID,
			TeamName:         te.Team.Name,
			MultipliedPoints: te.MultipliedPoints,
			DiffToLeader:     diffToLeader(points, i),
			DiffToNext:       diffToNext(points, i),
		}
	}
	return entries
}

// CategoryLeaderboard ranks users per hardware category, across all teams.
// Categories without users are absent from the map.
func (s *Service) CategoryLeaderboard(ctx context.Context) (map[models.Category][]models.CategoryLeaderboardEntry, error) {
	totals, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, err
	}

	teamNames := make(map[string]string, len(totals.Teams))
	for _, te := range totals.Teams {
		teamNames[te.Team.ID] = te.Team.Name
	}
	return categoryEntries(totals, teamNames), nil
}

func categoryEntries(totals *stats.Totals, teamNames map[string]string) map[models.Category][]models.CategoryLeaderboardEntry {
	byCategory := make(map[models.Category][]stats.UserEntry)
	for _, ue := range totals.Users {
		byCategory[ue.User.Category] = append(byCategory[ue.User.Category], ue)
	}

	out := make(map[models.Category][]models.CategoryLeaderboardEntry, len(byCategory))
	for category, users := range byCategory {
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].Total.MultipliedPoints > users[j].Total.MultipliedPoints
		})

		points := make([]int64, len(users))
		for i := range users {
			points[i] = users[i].Total.MultipliedPoints
		}
		ranks := stats.AssignRanks(points)

		entries := make([]models.CategoryLeaderboardEntry, len(users))
		for i, ue := range users {
			entries[i] = models.CategoryLeaderboardEntry{
				Rank:             ranks[i],
				UserID:           ue.User.ID,
				DisplayName:      ue.User.DisplayName,
				TeamName:         teamNames[ue.User.TeamID],
				MultipliedPoints: ue.Total.MultipliedPoints,
				DiffToLeader:     diffToLeader(points, i),
				DiffToNext:       diffToNext(points, i),
			}
		}
		out[category] = entries
	}
	return out
}

func diffToLeader(points []int64, i int) int64 {
	if i == 0 {
		return 0
	}
	return points[0] - points[i]
}

func diffToNext(points []int64, i int) int64 {
	if i == 0 {
		return 0
	}
	return points[i-1] - points[i]
}

// TriggerMonthlyReset freezes the period just ending into a MonthlyResult,
// archives it and resets all competition state. The whole rollover runs under
// the exclusive admin lock, so no ingestion interleaves with it.
func (s *Service) TriggerMonthlyReset(ctx context.Context) (*models.MonthlyResult, error) {
	release := s.stats.Gate().EnterAdmin()
	defer release()

	result, err := s.snapshotPeriod(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.reset(ctx); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "monthly reset complete", "year", result.Year, "month", int(result.Month))
	return result, nil
}

// Reset clears all competition state without recording a result. Safe to
// call with an empty roster.
func (s *Service) Reset(ctx context.Context) error {
	release := s.stats.Gate().EnterAdmin()
	defer release()
	return s.reset(ctx)
}

func (s *Service) GetMonthlyResult(ctx context.Context, year int, month time.Month) (*models.MonthlyResult, error) {
	return s.rm.MonthlyResults().Get(ctx, year, month)
}

// snapshotPeriod persists the final standings of the period containing
// now-1s, so a rollover fired exactly at the month boundary is attributed to
// the month that just ended.
func (s *Service) snapshotPeriod(ctx context.Context) (*models.MonthlyResult, error) {
	totals, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, err
	}
	teamNames := make(map[string]string, len(totals.Teams))
	for _, te := range totals.Teams {
		teamNames[te.Team.ID] = te.Team.Name
	}

	now := s.now().UTC()
	period := now.Add(-time.Second)
	result := &models.MonthlyResult{
		Year:                period.Year(),
		Month:               period.Month(),
		TeamLeaderboard:     teamEntries(totals),
		CategoryLeaderboard: categoryEntries(totals, teamNames),
		CreatedAt:           now,
	}

	if err := s.rm.MonthlyResults().Create(ctx, result); err != nil {
		return nil, err
	}

	// Archiving is best-effort: the database copy is authoritative.
	if s.uploader != nil && s.uploader.Enabled() {
		if err := s.uploader.UploadMonthlyResult(ctx, result); err != nil {
			s.log.Warn(ctx, "monthly result archive upload failed",
				"year", result.Year, "month", int(result.Month), "error", err.Error())
		}
	}
	return result, nil
}

// reset clears the period: all snapshots, retired freezes and offsets go, and
// every remaining user's baseline is re-based to their last known raw total
// so the new period starts at zero contribution. Re-basing uses stored state
// rather than a live provider round-trip, keeping the rollover all-or-nothing.
func (s *Service) reset(ctx context.Context) error {
	users, err := s.rm.Users().List(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	rebased := make([]*models.Baseline, 0, len(users))
	for _, user := range users {
		baseline, err := s.rm.Baselines().GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		next := &models.Baseline{UserID: user.ID, Points: baseline.Points, Units: baseline.Units, CapturedAt: now}
		if latest, err := s.rm.Snapshots().Latest(ctx, user.ID); err == nil {
			next.Points += latest.Points
			next.Units += latest.Units
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		rebased = append(rebased, next)
	}

	return s.rm.InTx(ctx, func(tx repositories.Manager) error {
		if err := tx.Snapshots().DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Retired().DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Offsets().DeleteAll(ctx); err != nil {
			return err
		}
		for _, baseline := range rebased {
			if err := tx.Baselines().Upsert(ctx, baseline); err != nil {
				return err
			}
		}
		return nil
	})
}
