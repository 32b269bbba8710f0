package tcctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubCredentials(t *testing.T, username, password string) {
	t.Helper()
	origText := getSimpleText
	origPassword := getPassword
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPassword
	})
	getSimpleText = func(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
		return username, nil
	}
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func newTestApp(srvURL string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := NewApp(srvURL)
	app.reader = bufio.NewReader(bytes.NewReader(nil))
	app.out = out
	return app, out
}

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["username"] != "admin" || req["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("POST /api/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.CycleReport{
			Succeeded: []string{"u1", "u2"},
			Skipped:   []models.CycleSkip{{UserID: "u3", Reason: "provider_unavailable"}},
		})
	})
	mux.HandleFunc("GET /api/leaderboard/teams", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.LeaderboardEntry{
			{Rank: 1, TeamName: "alpha", MultipliedPoints: 30000},
			{Rank: 2, TeamName: "beta", MultipliedPoints: 20000, DiffToLeader: 10000, DiffToNext: 10000},
		})
	})
	mux.HandleFunc("POST /api/reset", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.MonthlyResult{
			Year: 2026, Month: time.August,
			TeamLeaderboard: []models.LeaderboardEntry{{Rank: 1, TeamName: "alpha"}},
		})
	})
	mux.HandleFunc("POST /api/hardware/catalog", func(w http.ResponseWriter, r *http.Request) {
		var catalog []models.CatalogEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&catalog))
		assert.Len(t, catalog, 2)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Ingest(t *testing.T) {
	srv := fakeServer(t)
	stubCredentials(t, "admin", "s3cret")

	app, out := newTestApp(srv.URL)
	require.NoError(t, app.Run(context.Background(), "ingest", nil))

	assert.Contains(t, out.String(), "2 succeeded, 1 skipped")
	assert.Contains(t, out.String(), "skipped u3: provider_unavailable")
}

func TestRun_BadCredentials(t *testing.T) {
	srv := fakeServer(t)
	stubCredentials(t, "admin", "wrong")

	app, _ := newTestApp(srv.URL)
	err := app.Run(context.Background(), "ingest", nil)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRun_Leaderboard(t *testing.T) {
	srv := fakeServer(t)
	stubCredentials(t, "admin", "s3cret")

	app, out := newTestApp(srv.URL)
	require.NoError(t, app.Run(context.Background(), "leaderboard", nil))

	assert.Contains(t, out.String(), "alpha")
	assert.Contains(t, out.String(), "to leader: 10000")
}

func TestRun_ResetRequiresConfirmation(t *testing.T) {
	srv := fakeServer(t)

	origText := getSimpleText
	origPassword := getPassword
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPassword
	})
	getPassword = func(w io.Writer) ([]byte, error) { return []byte("s3cret"), nil }

	prompts := 0
	getSimpleText = func(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
		prompts++
		if prompts == 1 {
			return "admin", nil
		}
		return "no", nil
	}

	app, out := newTestApp(srv.URL)
	require.NoError(t, app.Run(context.Background(), "reset", nil))
	assert.Contains(t, out.String(), "aborted")
}

func TestRun_ResetConfirmed(t *testing.T) {
	srv := fakeServer(t)

	origText := getSimpleText
	origPassword := getPassword
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPassword
	})
	getPassword = func(w io.Writer) ([]byte, error) { return []byte("s3cret"), nil }

	prompts := 0
	getSimpleText = func(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
		prompts++
		if prompts == 1 {
			return "admin", nil
		}
		return "yes", nil
	}

	app, out := newTestApp(srv.URL)
	require.NoError(t, app.Run(context.Background(), "reset", nil))
	assert.Contains(t, out.String(), "period 2026-08 archived")
}

func TestRun_Catalog(t *testing.T) {
	srv := fakeServer(t)
	stubCredentials(t, "admin", "s3cret")

	path := filepath.Join(t.TempDir(), "catalog.json")
	catalog := []models.CatalogEntry{
		{Name: "rtx-4090", DisplayName: "RTX 4090", AveragePPD: 1_000_000},
		{Name: "gtx-1060", DisplayName: "GTX 1060", AveragePPD: 250_000},
	}
	b, err := json.Marshal(catalog)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	app, out := newTestApp(srv.URL)
	require.NoError(t, app.Run(context.Background(), "catalog", []string{path}))
	assert.Contains(t, out.String(), "catalog refreshed with 2 entries")
}

func TestRun_UnknownCommand(t *testing.T) {
	srv := fakeServer(t)
	stubCredentials(t, "admin", "s3cret")

	app, _ := newTestApp(srv.URL)
	err := app.Run(context.Background(), "frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
