package history

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rm  *repositories.InMemoryManager
	svc *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rm := repositories.NewInMemoryManager()
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	require.NoError(t, rm.Users().Create(context.Background(), &models.User{
		ID: "u1", FoldingName: "u1", TeamID: "t1", HardwareID: "hw1",
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}))
	return &fixture{rm: rm, svc: NewService(rm, log)}
}

func (f *fixture) append(t *testing.T, ts time.Time, points, multiplied, units int64) {
	t.Helper()
	require.NoError(t, f.rm.Snapshots().Append(context.Background(), &models.StatsSnapshot{
		UserID: "u1", Timestamp: ts, Points: points, MultipliedPoints: multiplied, Units: units,
	}))
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 8, day, hour, minute, 0, 0, time.UTC)
}

func TestHistoricStats_HourlyMidMonthUsesFirstBucketAsReference(t *testing.T) {
	f := newFixture(t)
	f.append(t, at(14, 23, 0), 0, 0, 0)
	f.append(t, at(15, 13, 0), 20, 200, 2)
	f.append(t, at(15, 14, 0), 100, 1000, 10)

	buckets, fp, unchanged, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 15}, "")
	require.NoError(t, err)
	assert.False(t, unchanged)
	assert.NotEmpty(t, fp)

	require.Len(t, buckets, 1)
	assert.Equal(t, at(15, 14, 0), buckets[0].BucketStart)
	assert.Equal(t, int64(80), buckets[0].Points)
	assert.Equal(t, int64(800), buckets[0].MultipliedPoints)
	assert.Equal(t, int64(8), buckets[0].Units)
}

func TestHistoricStats_SameHourRowsCollapseToMax(t *testing.T) {
	f := newFixture(t)
	f.append(t, at(15, 13, 0), 50, 500, 5)
	f.append(t, at(15, 14, 0), 100, 1000, 10)
	f.append(t, at(15, 14, 30), 110, 1100, 11)

	buckets, _, _, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 15}, "")
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, at(15, 14, 0), buckets[0].BucketStart)
	assert.Equal(t, int64(60), buckets[0].Points)
	assert.Equal(t, int64(600), buckets[0].MultipliedPoints)
	assert.Equal(t, int64(6), buckets[0].Units)
}

func TestHistoricStats_FirstDayOfMonthDiffsAgainstZero(t *testing.T) {
	f := newFixture(t)
	f.append(t, at(1, 13, 0), 20, 200, 2)
	f.append(t, at(1, 14, 0), 100, 1000, 10)

	buckets, _, _, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 1}, "")
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, int64(20), buckets[0].Points)
	assert.Equal(t, int64(80), buckets[1].Points)
}

func TestHistoricStats_DailyOverMonth(t *testing.T) {
	f := newFixture(t)
	f.append(t, at(1, 10, 0), 100, 1000, 1)
	f.append(t, at(1, 20, 0), 150, 1500, 2)
	f.append(t, at(3, 10, 0), 400, 4000, 5)

	buckets, _, _, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityDay, Period{Year: 2026, Month: time.August}, "")
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, at(1, 0, 0), buckets[0].BucketStart)
	assert.Equal(t, int64(150), buckets[0].Points)
	assert.Equal(t, at(3, 0, 0), buckets[1].BucketStart)
	assert.Equal(t, int64(250), buckets[1].Points)
	assert.Equal(t, int64(2500), buckets[1].MultipliedPoints)
	assert.Equal(t, int64(3), buckets[1].Units)
}

func TestHistoricStats_MonthlyNeverDiffsAgainstPreviousMonth(t *testing.T) {
	f := newFixture(t)
	// A leftover row from July must not bleed into August's bucket.
	f.append(t, time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC), 900, 9000, 90)
	f.append(t, at(10, 12, 0), 100, 1000, 10)
	f.append(t, at(20, 12, 0), 300, 3000, 30)

	buckets, _, _, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityMonth, Period{Year: 2026, Month: time.August}, "")
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, at(1, 0, 0), buckets[0].BucketStart)
	assert.Equal(t, int64(300), buckets[0].Points)
	assert.Equal(t, int64(3000), buckets[0].MultipliedPoints)
	assert.Equal(t, int64(30), buckets[0].Units)
}

func TestHistoricStats_EmptyPeriodIsEmptySequence(t *testing.T) {
	f := newFixture(t)
	buckets, fp, unchanged, err := f.svc.HistoricStats(context.Background(), "u1",
		models.GranularityDay, Period{Year: 2026, Month: time.August}, "")
	require.NoError(t, err)
	assert.False(t, unchanged)
	assert.NotEmpty(t, fp)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestHistoricStats_FingerprintRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.append(t, at(15, 13, 0), 50, 500, 5)
	f.append(t, at(15, 14, 0), 100, 1000, 10)

	_, fp, unchanged, err := f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 15}, "")
	require.NoError(t, err)
	require.False(t, unchanged)

	buckets, fp2, unchanged, err := f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 15}, fp)
	require.NoError(t, err)
	assert.True(t, unchanged)
	assert.Nil(t, buckets)
	assert.Equal(t, fp, fp2)

	// New data invalidates the fingerprint.
	f.append(t, at(15, 15, 0), 120, 1200, 12)
	buckets, fp3, unchanged, err := f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 15}, fp)
	require.NoError(t, err)
	assert.False(t, unchanged)
	assert.NotEqual(t, fp, fp3)
	assert.Len(t, buckets, 2)
}

func TestHistoricStats_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, _, err := f.svc.HistoricStats(ctx, "nope",
		models.GranularityDay, Period{Year: 2026, Month: time.August}, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, _, err = f.svc.HistoricStats(ctx, "u1",
		models.Granularity("week"), Period{Year: 2026, Month: time.August}, "")
	assert.ErrorIs(t, err, common.ErrInvalidState)

	_, _, _, err = f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.August, Day: 0}, "")
	assert.ErrorIs(t, err, common.ErrInvalidState)

	// Days past the end of the month must not roll over into the next one.
	_, _, _, err = f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.September, Day: 31}, "")
	assert.ErrorIs(t, err, common.ErrInvalidState)

	_, _, _, err = f.svc.HistoricStats(ctx, "u1",
		models.GranularityHour, Period{Year: 2026, Month: time.February, Day: 29}, "")
	assert.ErrorIs(t, err, common.ErrInvalidState)
}
