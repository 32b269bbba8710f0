// Package stats implements the ingestion, diff and accumulation core of the
// competition: it pulls cumulative totals from the provider, converts them
// into per-period deltas and appends multiplied snapshots to the time series.
package stats

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/cryptox"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/metrics"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/provider"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	rm       repositories.Manager
	provider provider.Client
	gate     *Gate
	box      *cryptox.Box
	log      logging.Logger
	metrics  *metrics.Metrics
	workers  int

	now func() time.Time
}

func NewService(rm repositories.Manager, p provider.Client, gate *Gate, box *cryptox.Box, log logging.Logger, m *metrics.Metrics, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		rm:       rm,
		provider: p,
		gate:     gate,
		box:      box,
		log:      log,
		metrics:  m,
		workers:  workers,
		now:      time.Now,
	}
}

// Gate exposes the lock shared with the administrative services.
func (s *Service) Gate() *Gate {
	return s.gate
}

// RunCycle performs one full ingestion pass over all active users. Per-user
// failures are collected into the report instead of aborting the batch.
func (s *Service) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	start := s.now().UTC()

	users, err := s.rm.Users().List(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.CycleReport{StartedAt: start}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, user := range users {
		user := user
		g.Go(func() error {
			err := s.IngestUser(gctx, user)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				reason := skipReason(err)
				report.Skipped = append(report.Skipped, models.CycleSkip{UserID: user.ID, Reason: reason})
				s.metrics.IngestFailures.WithLabelValues(reason).Inc()
				s.log.Warn(gctx, "user skipped this cycle", "user_id", user.ID, "reason", reason, "error", err.Error())
				return nil
			}
			report.Succeeded = append(report.Succeeded, user.ID)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now().UTC()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	s.metrics.IngestCycles.Inc()
	s.metrics.CycleDuration.Observe(report.Duration.Seconds())
	s.log.Info(ctx, "ingest cycle finished",
		"users", len(users), "succeeded", len(report.Succeeded), "skipped", len(report.Skipped),
		"duration", report.Duration.String())

	return report, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, common.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, common.ErrProviderProtocol):
		return "provider_protocol"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// IngestUser fetches the user's lifetime totals, computes the delta against
// the last known raw value and appends a new snapshot. A provider total that
// went backward is treated as a zero delta for this cycle; the stored
// reference is never moved downward.
func (s *Service) IngestUser(ctx context.Context, user *models.User) error {
	release := s.gate.EnterIngest(user.ID)
	defer release()

	baseline, err := s.rm.Baselines().GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	prev := models.StatsSnapshot{UserID: user.ID}
	if latest, err := s.rm.Snapshots().Latest(ctx, user.ID); err == nil {
		prev = *latest
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	// Passkeys are stored sealed; the provider needs the plaintext.
	passkey := ""
	if user.Passkey != "" {
		pk, err := s.box.Open(user.Passkey)
		if err != nil {
			return err
		}
		passkey = string(pk)
	}

	current, err := s.provider.FetchCumulativeStats(ctx, user.FoldingName, passkey)
	if err != nil {
		return err
	}

	hw, err := s.rm.Hardware().GetByID(ctx, user.HardwareID)
	if err != nil {
		return err
	}

	pointsDelta := current.Points - (baseline.Points + prev.Points)
	unitsDelta := current.Units - (baseline.Units + prev.Units)

	if pointsDelta < 0 || unitsDelta < 0 {
		s.metrics.AnomalousDeltas.Inc()
		s.log.Warn(ctx, "provider total went backward, clamping delta to zero",
			"user_id", user.ID, "folding_name", user.FoldingName,
			"points_delta", pointsDelta, "units_delta", unitsDelta)
		pointsDelta = clampZero(pointsDelta)
		unitsDelta = clampZero(unitsDelta)
	}

	snapshot := Accumulate(prev, pointsDelta, unitsDelta, hw.Multiplier, s.now().UTC())
	return s.rm.Snapshots().Append(ctx, &snapshot)
}
