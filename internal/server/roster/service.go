// Package roster manages the mutable side of the competition: teams,
// hardware and users, including the retirement freeze taken when a
// contributing user is removed mid-period.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/cryptox"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/provider"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/avolkovs/teamcomp/internal/server/stats"
	"github.com/google/uuid"
)

type Service struct {
	rm       repositories.Manager
	provider provider.Client
	stats    *stats.Service
	box      *cryptox.Box
	log      logging.Logger

	now func() time.Time
}

func NewService(rm repositories.Manager, p provider.Client, statsSvc *stats.Service, box *cryptox.Box, log logging.Logger) *Service {
	return &Service{
		rm:       rm,
		provider: p,
		stats:    statsSvc,
		box:      box,
		log:      log,
		now:      time.Now,
	}
}

// NewUser describes a user being enrolled. Reactivating a retired identity
// is the same operation: a fresh baseline is captured, so the new record
// starts at zero contribution whichever team it joins.
type NewUser struct {
	FoldingName string
	Passkey     string
	DisplayName string
	Category    models.Category
	TeamID      string
	HardwareID  string
	IsCaptain   bool
}

func (s *Service) CreateTeam(ctx context.Context, name, description, forumLink string) (*models.Team, error) {
	team := &models.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		ForumLink:   forumLink,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.rm.Teams().Create(ctx, team); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "team created", "team_id", team.ID, "name", team.Name)
	return team, nil
}

func (s *Service) DeleteTeam(ctx context.Context, teamID string) error {
	n, err := s.rm.Users().CountByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: team has %d active users", common.ErrInvalidState, n)
	}
	return s.rm.Teams().Delete(ctx, teamID)
}

// CreateUser enrolls a user and captures their baseline from the provider's
// current lifetime totals, so the new identity contributes nothing until the
// next delta arrives.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if _, err := s.rm.Teams().GetByID(ctx, in.TeamID); err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	if _, err := s.rm.Hardware().GetByID(ctx, in.HardwareID); err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}

	current, err := s.provider.FetchCumulativeStats(ctx, in.FoldingName, in.Passkey)
	if err != nil {
		return nil, fmt.Errorf("baseline capture: %w", err)
	}

	// The passkey is stored sealed, never in plaintext.
	sealedPasskey := ""
	if in.Passkey != "" {
		sealedPasskey, err = s.box.Seal([]byte(in.Passkey))
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	user := &models.User{
		ID:          uuid.NewString(),
		FoldingName: in.FoldingName,
		Passkey:     sealedPasskey,
		DisplayName: in.DisplayName,
		Category:    in.Category,
		TeamID:      in.TeamID,
		HardwareID:  in.HardwareID,
		IsCaptain:   in.IsCaptain,
		CreatedAt:   now,
	}

	err = s.rm.InTx(ctx, func(tx repositories.Manager) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Baselines().Upsert(ctx, &models.Baseline{
			UserID:     user.ID,
			Points:     current.Points,
			Units:      current.Units,
			CapturedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user enrolled", "user_id", user.ID, "folding_name", user.FoldingName,
		"team_id", user.TeamID, "baseline_points", current.Points, "baseline_units", current.Units)
	return user, nil
}

// DeleteUser removes a user from the roster. A user with a non-zero
// contribution is retired: their final multiplied points and units are
// frozen for the team until the next monthly reset. A user with nothing
// accumulated is simply removed.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	release := s.stats.Gate().EnterAdmin()
	defer release()

	user, err := s.rm.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}

	latest := models.StatsSnapshot{UserID: userID}
	if snapshot, err := s.rm.Snapshots().Latest(ctx, userID); err == nil {
		latest = *snapshot
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	offset, err := s.rm.Offsets().GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	total := stats.ClampedTotal(latest, *offset)

	err = s.rm.InTx(ctx, func(tx repositories.Manager) error {
		if total.MultipliedPoints > 0 || total.Units > 0 {
			snapshot := &models.RetiredUserSnapshot{
				ID:               uuid.NewString(),
				TeamID:           user.TeamID,
				DisplayName:      user.DisplayName,
				MaskedName:       MaskIdentity(user.FoldingName),
				MultipliedPoints: total.MultipliedPoints,
				Units:            total.Units,
				RetiredAt:        s.now().UTC(),
			}
			if err := tx.Retired().Create(ctx, snapshot); err != nil {
				return err
			}
		}
		if err := tx.Snapshots().DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Offsets().DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Baselines().DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.stats.Gate().Forget(userID)
	s.log.Info(ctx, "user removed", "user_id", userID,
		"retired", total.MultipliedPoints > 0 || total.Units > 0,
		"frozen_multiplied_points", total.MultipliedPoints, "frozen_units", total.Units)
	return nil
}

// HasActiveCaptain reports whether the team currently has an active captain.
func (s *Service) HasActiveCaptain(ctx context.Context, teamID string) (bool, error) {
	if _, err := s.rm.Teams().GetByID(ctx, teamID); err != nil {
		return false, err
	}
	return s.rm.Users().HasCaptain(ctx, teamID)
}

// MaskIdentity hides the middle of a folding name for public retired
// listings, keeping the first and last character.
func MaskIdentity(foldingName string) string {
	runes := []rune(foldingName)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
