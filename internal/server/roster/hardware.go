package roster

import (
	"context"
	"fmt"
	"math"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/google/uuid"
)

func (s *Service) CreateHardware(ctx context.Context, name, displayName, hwMake, hwType string, averagePPD int64) (*models.Hardware, error) {
	if averagePPD <= 0 {
		return nil, fmt.Errorf("%w: average PPD must be positive", common.ErrInvalidState)
	}
	hw := &models.Hardware{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: displayName,
		Make:        hwMake,
		Type:        hwType,
		Multiplier:  1,
		AveragePPD:  averagePPD,
		CreatedAt:   s.now().UTC(),
	}
	err := s.rm.InTx(ctx, func(tx repositories.Manager) error {
		if err := tx.Hardware().Create(ctx, hw); err != nil {
			return err
		}
		return recomputeMultipliers(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return s.rm.Hardware().GetByID(ctx, hw.ID)
}

func (s *Service) DeleteHardware(ctx context.Context, hardwareID string) error {
	if _, err := s.rm.Hardware().GetByID(ctx, hardwareID); err != nil {
		return err
	}
	n, err := s.rm.Users().CountByHardware(ctx, hardwareID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: referenced by %d active users", common.ErrHardwareInUse, n)
	}
	return s.rm.InTx(ctx, func(tx repositories.Manager) error {
		if err := tx.Hardware().Delete(ctx, hardwareID); err != nil {
			return err
		}
		return recomputeMultipliers(ctx, tx)
	})
}

// RefreshCatalog reconciles the tracked hardware against a fresh catalog
// feed and recomputes every multiplier from the best-performing entry.
// Entries missing from the feed are deleted unless still assigned to a
// user, in which case they are kept with their last known PPD. Entries
// reporting a non-positive PPD are skipped.
//
// Runs under the exclusive admin lock so no snapshot is appended with a
// half-updated multiplier.
func (s *Service) RefreshCatalog(ctx context.Context, catalog []models.CatalogEntry) error {
	release := s.stats.Gate().EnterAdmin()
	defer release()

	var created, updated, deleted, kept, skipped int

	err := s.rm.InTx(ctx, func(tx repositories.Manager) error {
		existing, err := tx.Hardware().List(ctx)
		if err != nil {
			return err
		}
		byName := make(map[string]*models.Hardware, len(existing))
		for _, hw := range existing {
			byName[hw.Name] = hw
		}

		inFeed := make(map[string]bool, len(catalog))
		for _, entry := range catalog {
			if entry.AveragePPD <= 0 {
				skipped++
				s.log.Warn(ctx, "catalog entry has non-positive PPD, skipping", "name", entry.Name)
				continue
			}
			inFeed[entry.Name] = true

			if hw, ok := byName[entry.Name]; ok {
				hw.DisplayName = entry.DisplayName
				hw.Make = entry.Make
				hw.Type = entry.Type
				hw.AveragePPD = entry.AveragePPD
				if err := tx.Hardware().Update(ctx, hw); err != nil {
					return err
				}
				updated++
				continue
			}
			if err := tx.Hardware().Create(ctx, &models.Hardware{
				ID:          uuid.NewString(),
				Name:        entry.Name,
				DisplayName: entry.DisplayName,
				Make:        entry.Make,
				Type:        entry.Type,
				Multiplier:  1,
				AveragePPD:  entry.AveragePPD,
				CreatedAt:   s.now().UTC(),
			}); err != nil {
				return err
			}
			created++
		}

		for _, hw := range existing {
			if inFeed[hw.Name] {
				continue
			}
			n, err := tx.Users().CountByHardware(ctx, hw.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				kept++
				s.log.Warn(ctx, "hardware missing from catalog but still in use, keeping",
					"hardware_id", hw.ID, "name", hw.Name, "users", n)
				continue
			}
			if err := tx.Hardware().Delete(ctx, hw.ID); err != nil {
				return err
			}
			deleted++
		}

		return recomputeMultipliers(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "hardware catalog refreshed",
		"created", created, "updated", updated, "deleted", deleted, "kept_in_use", kept, "skipped", skipped)
	return nil
}

// recomputeMultipliers sets every tracked entry's multiplier to
// bestPPD / ownPPD, rounded to two decimals. The best entry itself
// lands on exactly 1.
func recomputeMultipliers(ctx context.Context, tx repositories.Manager) error {
	list, err := tx.Hardware().List(ctx)
	if err != nil {
		return err
	}
	var best int64
	for _, hw := range list {
		if hw.AveragePPD > best {
			best = hw.AveragePPD
		}
	}
	if best == 0 {
		return nil
	}
	for _, hw := range list {
		m := roundMultiplier(float64(best) / float64(hw.AveragePPD))
		if m == hw.Multiplier {
			continue
		}
		hw.Multiplier = m
		if err := tx.Hardware().Update(ctx, hw); err != nil {
			return err
		}
	}
	return nil
}

func roundMultiplier(m float64) float64 {
	return math.Round(m*100) / 100
}
