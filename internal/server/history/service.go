// Package history re-slices the append-only stats time series into hour, day
// and month buckets on demand. Results are pure functions of stored
// snapshots, so a content fingerprint lets callers skip unchanged payloads.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
)

type Service struct {
	rm  repositories.Manager
	log logging.Logger
}

func NewService(rm repositories.Manager, log logging.Logger) *Service {
	return &Service{rm: rm, log: log}
}

// Period selects the window of a historic query. Day is only consulted for
// hourly granularity; daily and monthly queries cover the whole month.
type Period struct {
	Year  int
	Month time.Month
	Day   int
}

// HistoricStats buckets the user's snapshots within the period by the given
// granularity and returns per-bucket deltas, ordered ascending.
//
// Each snapshot is a reading of the same monotonically increasing cumulative
// series, so a bucket's value is the maximum observed within it, and the
// emitted delta is that maximum minus the previous bucket's. A window opening
// at the month boundary diffs its first bucket against zero (the reset
// boundary guarantees the series starts there); a window opening mid-month
// uses its first populated bucket as the reference and emits the rest.
//
// When prevFingerprint matches the fingerprint of the freshly computed
// result, unchanged=true is returned with no payload.
func (s *Service) HistoricStats(ctx context.Context, userID string, granularity models.Granularity, period Period, prevFingerprint string) (buckets []models.HistoricBucket, fingerprint string, unchanged bool, err error) {
	if _, err := s.rm.Users().GetByID(ctx, userID); err != nil {
		return nil, "", false, err
	}

	from, to, err := window(granularity, period)
	if err != nil {
		return nil, "", false, err
	}

	rows, err := s.rm.Snapshots().ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, "", false, err
	}

	maxes := bucketMaxes(rows, granularity)

	monthStart := time.Date(period.Year, period.Month, 1, 0, 0, 0, 0, time.UTC)
	buckets = diffBuckets(maxes, from.Equal(monthStart))

	fingerprint = fingerprintOf(userID, granularity, from, buckets)
	if prevFingerprint != "" && prevFingerprint == fingerprint {
		return nil, fingerprint, true, nil
	}
	return buckets, fingerprint, false, nil
}

func window(granularity models.Granularity, p Period) (from, to time.Time, err error) {
	switch granularity {
	case models.GranularityHour:
		if p.Day < 1 || p.Day > daysInMonth(p.Year, p.Month) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: day %d out of range", common.ErrInvalidState, p.Day)
		}
		from = time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 0, 1), nil
	case models.GranularityDay, models.GranularityMonth:
		from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown granularity %q", common.ErrInvalidState, granularity)
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncate(ts time.Time, granularity models.Granularity) time.Time {
	ts = ts.UTC()
	switch granularity {
	case models.GranularityHour:
		return ts.Truncate(time.Hour)
	case models.GranularityDay:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// bucketMaxes folds the ascending snapshot rows into one max-valued bucket
// per truncated timestamp, preserving chronological order.
func bucketMaxes(rows []*models.StatsSnapshot, granularity models.Granularity) []models.HistoricBucket {
	var out []models.HistoricBucket
	for _, row := range rows {
		start := truncate(row.Timestamp, granularity)
		if n := len(out); n > 0 && out[n-1].BucketStart.Equal(start) {
			b := &out[n-1]
			b.Points = max(b.Points, row.Points)
			b.MultipliedPoints = max(b.MultipliedPoints, row.MultipliedPoints)
			b.Units = max(b.Units, row.Units)
			continue
		}
		out = append(out, models.HistoricBucket{
			BucketStart:      start,
			Points:           row.Points,
			MultipliedPoints: row.MultipliedPoints,
			Units:            row.Units,
		})
	}
	return out
}

// diffBuckets converts cumulative bucket maxes into per-bucket deltas. When
// the window opens at the month boundary the first bucket diffs against zero;
// otherwise the first bucket carries pre-window contribution and serves only
// as the reference for the rest.
func diffBuckets(maxes []models.HistoricBucket, fromMonthStart bool) []models.HistoricBucket {
	out := []models.HistoricBucket{}
	var ref models.HistoricBucket
	for i, b := range maxes {
		if i == 0 && !fromMonthStart {
			ref = b
			continue
		}
		out = append(out, models.HistoricBucket{
			BucketStart:      b.BucketStart,
			Points:           b.Points - ref.Points,
			MultipliedPoints: b.MultipliedPoints - ref.MultipliedPoints,
			Units:            b.Units - ref.Units,
		})
		ref = b
	}
	return out
}

func fingerprintOf(userID string, granularity models.Granularity, from time.Time, buckets []models.HistoricBucket) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s\n", userID, granularity, from.Format(time.RFC3339))
	for _, b := range buckets {
		fmt.Fprintf(h, "%s|%d|%d|%d\n", b.BucketStart.Format(time.RFC3339), b.Points, b.MultipliedPoints, b.Units)
	}
	return hex.EncodeToString(h.Sum(nil))
}
