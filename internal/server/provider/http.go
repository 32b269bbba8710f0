package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/sethvargo/go-retry"
)

const maxFetchRetries = 3

// HTTPClient implements Client against the provider's REST endpoint.
// Transient failures are retried with exponential backoff before the user
// is given up for the cycle.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *HTTPClient) FetchCumulativeStats(ctx context.Context, foldingName, passkey string) (CumulativeStats, error) {
	endpoint := fmt.Sprintf("%s/user/%s/stats?passkey=%s",
		c.baseURL, url.PathEscape(foldingName), url.QueryEscape(passkey))

	var stats CumulativeStats

	backoff := retry.WithMaxRetries(maxFetchRetries, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network-level failure, worth another attempt.
			return retry.RetryableError(fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("%w: status %d", common.ErrProviderUnavailable, resp.StatusCode))
		default:
			return fmt.Errorf("%w: status %d for %q", common.ErrProviderProtocol, resp.StatusCode, foldingName)
		}

		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return fmt.Errorf("%w: decode: %v", common.ErrProviderProtocol, err)
		}
		return nil
	})
	if err != nil {
		return CumulativeStats{}, err
	}

	if stats.Points < 0 || stats.Units < 0 {
		return CumulativeStats{}, fmt.Errorf("%w: negative lifetime totals for %q", common.ErrProviderProtocol, foldingName)
	}
	return stats, nil
}
