// Package forecast persists emitted forecast events. Purely storage;
// scoring and action selection happen upstream.
package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prediction-engine/models"
)

// Store is the durable, queryable record of emitted forecasts.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save persists one forecast event, assigning an ID and CreatedAt when
// unset. Events are written once and never mutated.
func (s *Store) Save(f *models.ForecastEvent) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if err := s.db.Create(f).Error; err != nil {
		return fmt.Errorf("save forecast: %w", err)
	}
	return nil
}

// List returns up to limit forecasts for the organization, most recent
// first. A non-empty window narrows the result to that bucket.
func (s *Store) List(orgID string, window models.ForecastWindow, limit int) ([]models.ForecastEvent, error) {
	query := s.db.Where("organization_id = ?", orgID)
	if window != "" {
		query = query.Where("forecast_window = ?", window)
	}

	events := []models.ForecastEvent{}
	err := query.Order("created_at DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	return events, nil
}

// CountByRiskType returns forecast counts per risk type for the
// organization's stats view.
func (s *Store) CountByRiskType(orgID string) (map[models.RiskType]int64, error) {
	type row struct {
		RiskType models.RiskType
		Total    int64
	}
	var rows []row
	err := s.db.Model(&models.ForecastEvent{}).
		Select("risk_type, COUNT(*) AS total").
		Where("organization_id = ?", orgID).
		Group("risk_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count forecasts: %w", err)
	}
	counts := make(map[models.RiskType]int64, len(rows))
	for _, r := range rows {
		counts[r.RiskType] = r.Total
	}
	return counts, nil
}
