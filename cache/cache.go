// Package cache implements the short-lived signal cache: an
// append-only, per-organization store of recently received signals.
//
// There is no update path, so concurrent ingests cannot lose writes;
// the reaper's purge only touches rows strictly older than the
// retention bound and never races with inserts of current signals.
package cache

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"prediction-engine/models"
)

// SignalCache stores signals in the shared sqlite database.
type SignalCache struct {
	db *gorm.DB
}

// New creates a cache backed by db.
func New(db *gorm.DB) *SignalCache {
	return &SignalCache{db: db}
}

// Ingest appends signals for an organization. A zero ReceivedAt is
// stamped with the ingestion time; timestamps supplied by the caller
// are preserved.
func (c *SignalCache) Ingest(orgID string, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range signals {
		signals[i].OrganizationID = orgID
		if signals[i].ReceivedAt.IsZero() {
			signals[i].ReceivedAt = now
		}
	}
	if err := c.db.Create(&signals).Error; err != nil {
		return fmt.Errorf("cache signals: %w", err)
	}
	return nil
}

// Query returns every cached signal for the organization with
// ReceivedAt >= since. Order is not guaranteed; callers group and sort
// as needed.
func (c *SignalCache) Query(orgID string, since time.Time) ([]models.Signal, error) {
	var signals []models.Signal
	err := c.db.
		Where("organization_id = ? AND received_at >= ?", orgID, since).
		Find(&signals).Error
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	return signals, nil
}

// Recent returns up to limit signals for the organization, newest
// first. Diagnostic use only.
func (c *SignalCache) Recent(orgID string, limit int) ([]models.Signal, error) {
	signals := []models.Signal{}
	err := c.db.
		Where("organization_id = ?", orgID).
		Order("received_at DESC").
		Limit(limit).
		Find(&signals).Error
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return signals, nil
}

// Purge deletes signals older than the given timestamp and returns the
// number removed. Signals with ReceivedAt >= olderThan are untouched.
func (c *SignalCache) Purge(orgID string, olderThan time.Time) (int64, error) {
	res := c.db.
		Where("organization_id = ? AND received_at < ?", orgID, olderThan).
		Delete(&models.Signal{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge signals: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Organizations returns the distinct organization IDs currently
// present in the cache, for the reaper's sweep.
func (c *SignalCache) Organizations() ([]string, error) {
	var orgs []string
	err := c.db.Model(&models.Signal{}).
		Distinct("organization_id").
		Pluck("organization_id", &orgs).Error
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}
