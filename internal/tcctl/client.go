// Package tcctl implements the administrative command-line client for the
// competition server. It authenticates against the REST API and exposes the
// operational commands: manual ingestion, leaderboards and the monthly reset.
package tcctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// APIClient is a thin typed wrapper over the server's REST API.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *APIClient) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	case resp.StatusCode >= 400:
		var er struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, er.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login exchanges the admin credential for a bearer token used by all
// subsequent calls.
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.request(ctx, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *APIClient) TriggerIngest(ctx context.Context) (*models.CycleReport, error) {
	report := &models.CycleReport{}
	if err := c.request(ctx, http.MethodPost, "/api/ingest", nil, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *APIClient) CompetitionSummary(ctx context.Context) (*models.CompetitionSummary, error) {
	summary := &models.CompetitionSummary{}
	if err := c.request(ctx, http.MethodGet, "/api/summary", nil, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *APIClient) TeamLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var board []models.LeaderboardEntry
	if err := c.request(ctx, http.MethodGet, "/api/leaderboard/teams", nil, &board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *APIClient) TriggerMonthlyReset(ctx context.Context) (*models.MonthlyResult, error) {
	result := &models.MonthlyResult{}
	if err := c.request(ctx, http.MethodPost, "/api/reset", nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *APIClient) RefreshCatalog(ctx context.Context, catalog []models.CatalogEntry) error {
	return c.request(ctx, http.MethodPost, "/api/hardware/catalog", catalog, nil)
}
