package stats

import (
	"math"
	"time"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

// MultipliedDelta converts a raw points delta into competition points using
// the hardware multiplier in effect right now. Rounding is half-up per
// delta; already-accumulated multiplied points are never recomputed.
func MultipliedDelta(rawPointsDelta int64, multiplier float64) int64 {
	return int64(math.Round(float64(rawPointsDelta) * multiplier))
}

// Accumulate extends the user's cumulative series by one row. prev is the
// latest snapshot this period, or a zero-value snapshot (with UserID set)
// when the period has no rows yet. Deltas must already be non-negative.
func Accumulate(prev models.StatsSnapshot, rawPointsDelta, rawUnitsDelta int64, multiplier float64, now time.Time) models.StatsSnapshot {
	return models.StatsSnapshot{
		UserID:           prev.UserID,
		Timestamp:        now,
		Points:           prev.Points + rawPointsDelta,
		MultipliedPoints: prev.MultipliedPoints + MultipliedDelta(rawPointsDelta, multiplier),
		Units:            prev.Units + rawUnitsDelta,
	}
}

// ClampedTotal applies the user's manual offset on top of the latest
// cumulative values. Each metric is clamped to zero independently; stored
// snapshots are never modified.
func ClampedTotal(latest models.StatsSnapshot, offset models.Offset) models.UserTotal {
	return models.UserTotal{
		Points:           clampZero(latest.Points + offset.Points),
		MultipliedPoints: clampZero(latest.MultipliedPoints + offset.MultipliedPoints),
		Units:            clampZero(latest.Units + offset.Units),
	}
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// AssignRanks maps values already sorted in descending order to competition
// ranks: ties share a rank, and the following distinct value skips past the
// tied group.
func AssignRanks(values []int64) []int {
	ranks := make([]int, len(values))
	for i := range values {
		if i > 0 && values[i] == values[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
