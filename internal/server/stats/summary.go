package stats

import (
	"context"
	"errors"
	"sort"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// UserEntry pairs an active user with their offset-adjusted totals.
type UserEntry struct {
	User  models.User
	Total models.UserTotal
}

// TeamEntry aggregates one team's active and retired contributions.
// Retired snapshots carry no raw points, so Points covers active users only.
type TeamEntry struct {
	Team             models.Team
	Points           int64
	MultipliedPoints int64
	Units            int64
	Active           []UserEntry
	Retired          []*models.RetiredUserSnapshot
}

// Totals is the consistent read model shared by summaries and leaderboards.
// Teams and users are in creation order, which is also the tie-break order
// for ranking.
type Totals struct {
	Users []UserEntry
	Teams []TeamEntry
}

// Collect assembles the current totals for every team and active user.
func (s *Service) Collect(ctx context.Context) (*Totals, error) {
	teamList, err := s.rm.Teams().List(ctx)
	if err != nil {
		return nil, err
	}
	userList, err := s.rm.Users().List(ctx)
	if err != nil {
		return nil, err
	}

	totals := &Totals{}
	byTeam := make(map[string][]UserEntry)

	for _, user := range userList {
		total, err := s.userTotal(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		entry := UserEntry{User: *user, Total: total}
		totals.Users = append(totals.Users, entry)
		byTeam[user.TeamID] = append(byTeam[user.TeamID], entry)
	}

	for _, team := range teamList {
		retiredList, err := s.rm.Retired().ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}

		entry := TeamEntry{Team: *team, Active: byTeam[team.ID], Retired: retiredList}
		for _, ue := range entry.Active {
			entry.Points += ue.Total.Points
			entry.MultipliedPoints += ue.Total.MultipliedPoints
			entry.Units += ue.Total.Units
		}
		for _, rs := range retiredList {
			entry.MultipliedPoints += rs.MultipliedPoints
			entry.Units += rs.Units
		}
		totals.Teams = append(totals.Teams, entry)
	}

	return totals, nil
}

func (s *Service) userTotal(ctx context.Context, userID string) (models.UserTotal, error) {
	latest := models.StatsSnapshot{UserID: userID}
	if snapshot, err := s.rm.Snapshots().Latest(ctx, userID); err == nil {
		latest = *snapshot
	} else if !errors.Is(err, common.ErrorNotFound) {
		return models.UserTotal{}, err
	}

	offset, err := s.rm.Offsets().GetByUserID(ctx, userID)
	if err != nil {
		return models.UserTotal{}, err
	}
	return ClampedTotal(latest, *offset), nil
}

// ApplyOffset adds a manual adjustment to the user's totals. The adjustment
// takes effect on the next read; stored snapshots are untouched.
func (s *Service) ApplyOffset(ctx context.Context, userID string, points, multipliedPoints, units int64) error {
	if _, err := s.rm.Users().GetByID(ctx, userID); err != nil {
		return err
	}

	release := s.gate.EnterIngest(userID)
	defer release()

	err := s.rm.Offsets().Add(ctx, userID, points, multipliedPoints, units)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "offset applied", "user_id", userID,
		"points", points, "multiplied_points", multipliedPoints, "units", units)
	return nil
}

// UserSummary returns one user's totals plus their rank within the team and
// across the whole competition.
func (s *Service) UserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	if _, err := s.rm.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	totals, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	summaries := rankUsers(totals.Users)
	for i := range summaries {
		if summaries[i].UserID == userID {
			return &summaries[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

// CompetitionSummary builds the full competition read model: per-team
// summaries with ranked users, plus grand totals.
func (s *Service) CompetitionSummary(ctx context.Context) (*models.CompetitionSummary, error) {
	totals, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	userSummaries := rankUsers(totals.Users)
	byUser := make(map[string]models.UserSummary, len(userSummaries))
	for _, us := range userSummaries {
		byUser[us.UserID] = us
	}

	teamEntries := make([]TeamEntry, len(totals.Teams))
	copy(teamEntries, totals.Teams)
	sort.SliceStable(teamEntries, func(i, j int) bool {
		return teamEntries[i].MultipliedPoints > teamEntries[j].MultipliedPoints
	})

	points := make([]int64, len(teamEntries))
	for i := range teamEntries {
		points[i] = teamEntries[i].MultipliedPoints
	}
	ranks := AssignRanks(points)

	summary := &models.CompetitionSummary{GeneratedAt: s.now().UTC()}
	for i, te := range teamEntries {
		ts := models.TeamSummary{
			TeamID:           te.Team.ID,
			TeamName:         te.Team.Name,
			Rank:             ranks[i],
			Points:           te.Points,
			MultipliedPoints: te.MultipliedPoints,
			Units:            te.Units,
			ActiveUsers:      make([]models.UserSummary, 0, len(te.Active)),
			RetiredUsers:     make([]models.RetiredUserSnapshot, 0, len(te.Retired)),
		}
		for _, ue := range te.Active {
			ts.ActiveUsers = append(ts.ActiveUsers, byUser[ue.User.ID])
		}
		for _, rs := range te.Retired {
			ts.RetiredUsers = append(ts.RetiredUsers, *rs)
		}
		summary.Teams = append(summary.Teams, ts)

		summary.TotalPoints += te.Points
		summary.TotalMultipliedPoints += te.MultipliedPoints
		summary.TotalUnits += te.Units
	}

	return summary, nil
}

// rankUsers produces user summaries with overall and in-team competition
// ranks. Tied users share a rank; within a tie, creation order holds.
func rankUsers(entries []UserEntry) []models.UserSummary {
	ordered := make([]UserEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Total.MultipliedPoints > ordered[j].Total.MultipliedPoints
	})

	overallPoints := make([]int64, len(ordered))
	for i := range ordered {
		overallPoints[i] = ordered[i].Total.MultipliedPoints
	}
	overallRanks := AssignRanks(overallPoints)

	summaries := make([]models.UserSummary, len(ordered))
	teamCount := make(map[string]int)
	teamLastRank := make(map[string]int)
	teamLastPoints := make(map[string]int64)
	for i, ue := range ordered {
		teamID := ue.User.TeamID
		teamCount[teamID]++

		rankInTeam := teamCount[teamID]
		if teamCount[teamID] > 1 && teamLastPoints[teamID] == ue.Total.MultipliedPoints {
			rankInTeam = teamLastRank[teamID]
		}
		teamLastRank[teamID] = rankInTeam
		teamLastPoints[teamID] = ue.Total.MultipliedPoints

		summaries[i] = models.UserSummary{
			UserID:           ue.User.ID,
			DisplayName:      ue.User.DisplayName,
			TeamID:           teamID,
			Category:         ue.User.Category,
			Points:           ue.Total.Points,
			MultipliedPoints: ue.Total.MultipliedPoints,
			Units:            ue.Total.Units,
			RankInTeam:       rankInTeam,
			RankOverall:      overallRanks[i],
		}
	}
	return summaries
}
