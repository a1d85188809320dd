package engine

import (
	"fmt"
	"time"

	"prediction-engine/cache"
	"prediction-engine/config"
	"prediction-engine/models"
	"prediction-engine/predictors"
)

// Grouper retrieves one window's cached signals and partitions them by
// source for the predictor set.
type Grouper struct {
	cache *cache.SignalCache
}

// NewGrouper creates a grouper over the given cache.
func NewGrouper(c *cache.SignalCache) *Grouper {
	return &Grouper{cache: c}
}

// Group returns the organization's signals received within the window,
// partitioned by source. An empty window yields an empty group, not an
// error: predictors treat missing groups as "no evidence".
func (g *Grouper) Group(orgID string, window models.ForecastWindow) (*predictors.GroupedSignals, error) {
	dur, ok := config.WindowDuration(window)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, window)
	}
	since := time.Now().UTC().Add(-dur)
	signals, err := g.cache.Query(orgID, since)
	if err != nil {
		return nil, err
	}
	return predictors.GroupBySource(signals), nil
}
