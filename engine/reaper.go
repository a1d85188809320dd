package engine

import (
	"context"
	"log/slog"
	"time"

	"prediction-engine/cache"
	"prediction-engine/config"
	"prediction-engine/metrics"
)

// Reaper periodically purges cache entries older than the retention
// bound for every known organization. Deletions only target entries
// strictly older than the bound, so they never race with writes of
// current signals.
type Reaper struct {
	cache     *cache.SignalCache
	retention config.Retention
	log       *slog.Logger
}

// NewReaper creates a reaper over the given cache.
func NewReaper(c *cache.SignalCache, retention config.Retention, log *slog.Logger) *Reaper {
	return &Reaper{cache: c, retention: retention, log: log}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.retention.ReapInterval.D())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep purges expired signals for every organization once.
func (r *Reaper) Sweep() {
	orgs, err := r.cache.Organizations()
	if err != nil {
		r.log.Error("reaper: list organizations", "error", err)
		return
	}
	cutoff := time.Now().UTC().Add(-r.retention.MaxAge.D())
	for _, org := range orgs {
		purged, err := r.cache.Purge(org, cutoff)
		if err != nil {
			r.log.Error("reaper: purge failed", "org_id", org, "error", err)
			continue
		}
		if purged > 0 {
			metrics.SignalsPurged.Add(float64(purged))
			r.log.Info("reaper: purged signals", "org_id", org, "purged", purged)
		}
	}
}
