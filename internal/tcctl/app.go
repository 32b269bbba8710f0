package tcctl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/avolkovs/teamcomp/internal/server/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	client *APIClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(serverURL string) *App {
	return &App{
		client: NewAPIClient(serverURL),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run authenticates interactively and dispatches the requested command.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	switch command {
	case "ingest":
		return a.ingest(ctx)
	case "summary":
		return a.summary(ctx)
	case "leaderboard":
		return a.leaderboard(ctx)
	case "reset":
		return a.reset(ctx)
	case "catalog":
		if len(args) != 1 {
			return fmt.Errorf("usage: tcctl catalog <file.json>")
		}
		return a.catalog(ctx, args[0])
	default:
		return fmt.Errorf("unknown command %q (expected ingest, summary, leaderboard, reset or catalog)", command)
	}
}

func (a *App) login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter admin username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	return a.client.Login(ctx, userName, string(password))
}

func (a *App) ingest(ctx context.Context) error {
	report, err := a.client.TriggerIngest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "cycle finished: %d succeeded, %d skipped\n", len(report.Succeeded), len(report.Skipped))
	for _, skip := range report.Skipped {
		fmt.Fprintf(a.out, "  skipped %s: %s\n", skip.UserID, skip.Reason)
	}
	return nil
}

func (a *App) summary(ctx context.Context) error {
	summary, err := a.client.CompetitionSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "total: %d points, %d multiplied, %d units\n",
		summary.TotalPoints, summary.TotalMultipliedPoints, summary.TotalUnits)
	for _, team := range summary.Teams {
		fmt.Fprintf(a.out, "%2d. %-20s %12d multiplied (%d active, %d retired)\n",
			team.Rank, team.TeamName, team.MultipliedPoints, len(team.ActiveUsers), len(team.RetiredUsers))
	}
	return nil
}

func (a *App) leaderboard(ctx context.Context) error {
	board, err := a.client.TeamLeaderboard(ctx)
	if err != nil {
		return err
	}
	for _, entry := range board {
		fmt.Fprintf(a.out, "%2d. %-20s %12d (to leader: %d, to next: %d)\n",
			entry.Rank, entry.TeamName, entry.MultipliedPoints, entry.DiffToLeader, entry.DiffToNext)
	}
	return nil
}

func (a *App) reset(ctx context.Context) error {
	confirm, err := getSimpleText(a.reader, "This archives the current period and resets all totals. Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if confirm != "yes" {
		fmt.Fprintln(a.out, "aborted")
		return nil
	}

	result, err := a.client.TriggerMonthlyReset(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "period %d-%02d archived, %d teams ranked\n",
		result.Year, int(result.Month), len(result.TeamLeaderboard))
	return nil
}

func (a *App) catalog(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var catalog []models.CatalogEntry
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := a.client.RefreshCatalog(ctx, catalog); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "catalog refreshed with %d entries\n", len(catalog))
	return nil
}
