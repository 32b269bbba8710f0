// Package provider talks to the external distributed-computing stats
// provider. The provider reports lifetime cumulative totals per
// (foldingName, passkey) identity; all competition semantics are layered on
// top by the stats engine.
package provider

import "context"

// CumulativeStats is the provider's lifetime total for one identity.
type CumulativeStats struct {
	Points int64 `json:"earned"`
	Units  int64 `json:"units"`
}

// Client fetches lifetime cumulative stats for one identity.
//
// Implementations classify failures: common.ErrProviderUnavailable for
// transient transport problems (the caller skips the user this cycle) and
// common.ErrProviderProtocol for unusable responses.
type Client interface {
	FetchCumulativeStats(ctx context.Context, foldingName, passkey string) (CumulativeStats, error)
}
