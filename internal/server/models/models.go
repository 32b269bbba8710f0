// Package models holds the domain records of the team competition: the
// roster (teams, users, hardware), the append-only stats time series and
// the derived summaries computed on read.
package models

import "time"

// Category is the hardware-class bracket a user competes in.
type Category string

const (
	CategoryAMDGPU    Category = "amd_gpu"
	CategoryNvidiaGPU Category = "nvidia_gpu"
	CategoryWildcard  Category = "wildcard"
)

// Granularity selects the bucket size for historic stats queries.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// Team is a competing team. Users are attributed to exactly one team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ForumLink   string    `json:"forumLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Hardware is a folding rig model from the hardware catalog. Multiplier is
// recomputed from the best-performing hardware and is never hand-edited.
type Hardware struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Make        string    `json:"make"`
	Type        string    `json:"type"`
	Multiplier  float64   `json:"multiplier"`
	AveragePPD  int64     `json:"averagePPD"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is an active roster member. The (FoldingName, Passkey) pair is the
// identity used against the external stats provider.
type User struct {
	ID          string    `json:"id"`
	FoldingName string    `json:"foldingName"`
	Passkey     string    `json:"-"`
	DisplayName string    `json:"displayName"`
	Category    Category  `json:"category"`
	TeamID      string    `json:"teamId"`
	HardwareID  string    `json:"hardwareId"`
	IsCaptain   bool      `json:"isCaptain"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Baseline is the raw provider total captured at enrollment, reactivation or
// monthly reset. All deltas for the current period are computed against it.
type Baseline struct {
	UserID     string    `json:"userId"`
	Points     int64     `json:"points"`
	Units      int64     `json:"units"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Offset is a manual administrative adjustment, applied additively at read
// time. Values may be negative; exposed totals are clamped at zero.
type Offset struct {
	UserID           string `json:"userId"`
	Points           int64  `json:"points"`
	MultipliedPoints int64  `json:"multipliedPoints"`
	Units            int64  `json:"units"`
}

// StatsSnapshot is one append-only row of the per-user time series. Values
// are cumulative for the current competition period, starting at zero.
type StatsSnapshot struct {
	UserID           string    `json:"userId"`
	Timestamp        time.Time `json:"timestamp"`
	Points           int64     `json:"points"`
	MultipliedPoints int64     `json:"multipliedPoints"`
	Units            int64     `json:"units"`
}

// RetiredUserSnapshot freezes a departing user's contribution for their team.
// It is immutable and survives until the next monthly reset.
type RetiredUserSnapshot struct {
	ID               string    `json:"id"`
	TeamID           string    `json:"teamId"`
	DisplayName      string    `json:"displayName"`
	MaskedName       string    `json:"maskedName"`
	MultipliedPoints int64     `json:"multipliedPoints"`
	Units            int64     `json:"units"`
	RetiredAt        time.Time `json:"retiredAt"`
}

// UserTotal is a user's offset-adjusted, zero-clamped totals for the current
// period. Derived, never stored.
type UserTotal struct {
	Points           int64 `json:"points"`
	MultipliedPoints int64 `json:"multipliedPoints"`
	Units            int64 `json:"units"`
}

// UserSummary is the per-user read model exposed to callers.
type UserSummary struct {
	UserID           string   `json:"userId"`
	DisplayName      string   `json:"displayName"`
	TeamID           string   `json:"teamId"`
	Category         Category `json:"category"`
	Points           int64    `json:"points"`
	MultipliedPoints int64    `json:"multipliedPoints"`
	Units            int64    `json:"units"`
	RankInTeam       int      `json:"rankInTeam"`
	RankOverall      int      `json:"rankOverall"`
}

// TeamSummary aggregates a team's active and retired contributions.
type TeamSummary struct {
	TeamID           string                `json:"teamId"`
	TeamName         string                `json:"teamName"`
	Rank             int                   `json:"rank"`
	Points           int64                 `json:"points"`
	MultipliedPoints int64                 `json:"multipliedPoints"`
	Units            int64                 `json:"units"`
	ActiveUsers      []UserSummary         `json:"activeUsers"`
	RetiredUsers     []RetiredUserSnapshot `json:"retiredUsers"`
}

// CompetitionSummary is the full competition read model.
type CompetitionSummary struct {
	TotalPoints           int64         `json:"totalPoints"`
	TotalMultipliedPoints int64         `json:"totalMultipliedPoints"`
	TotalUnits            int64         `json:"totalUnits"`
	Teams                 []TeamSummary `json:"teams"`
	GeneratedAt           time.Time     `json:"generatedAt"`
}

// LeaderboardEntry ranks one team. Tied teams share a rank; within a tie the
// order is team creation order.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	TeamID           string `json:"teamId"`
	TeamName         string `json:"teamName"`
	MultipliedPoints int64  `json:"multipliedPoints"`
	DiffToLeader     int64  `json:"diffToLeader"`
	DiffToNext       int64  `json:"diffToNext"`
}

// CategoryLeaderboardEntry ranks one user within a hardware category,
// across all teams.
type CategoryLeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	DisplayName      string `json:"displayName"`
	TeamName         string `json:"teamName"`
	MultipliedPoints int64  `json:"multipliedPoints"`
	DiffToLeader     int64  `json:"diffToLeader"`
	DiffToNext       int64  `json:"diffToNext"`
}

// MonthlyResult archives one period's final leaderboards, keyed (year, month).
type MonthlyResult struct {
	Year                int                                     `json:"year"`
	Month               time.Month                              `json:"month"`
	TeamLeaderboard     []LeaderboardEntry                      `json:"teamLeaderboard"`
	CategoryLeaderboard map[Category][]CategoryLeaderboardEntry `json:"categoryLeaderboard"`
	CreatedAt           time.Time                               `json:"createdAt"`
}

// HistoricBucket is one time bucket of a historic stats query. Values are
// deltas gained within the bucket.
type HistoricBucket struct {
	BucketStart      time.Time `json:"bucketStart"`
	Points           int64     `json:"points"`
	MultipliedPoints int64     `json:"multipliedPoints"`
	Units            int64     `json:"units"`
}

// CatalogEntry is one row of the external hardware catalog feed.
type CatalogEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Make        string `json:"make"`
	Type        string `json:"type"`
	AveragePPD  int64  `json:"averagePPD"`
}

// CycleReport lists the outcome of one ingestion cycle. Per-user failures
// are collected here instead of failing the batch.
type CycleReport struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Succeeded  []string      `json:"succeeded"`
	Skipped    []CycleSkip   `json:"skipped"`
	Duration   time.Duration `json:"-"`
}

// CycleSkip records one user skipped during an ingestion cycle.
type CycleSkip struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}
