package models

import "time"

// RiskType classifies what a forecast is warning about.
type RiskType string

const (
	RiskFailure      RiskType = "failure"
	RiskAnomaly      RiskType = "anomaly"
	RiskBudget       RiskType = "budget_risk"
	RiskBottleneck   RiskType = "bottleneck"
	RiskMisalignment RiskType = "misalignment"
)

// RiskTypes lists every supported risk type.
var RiskTypes = []RiskType{
	RiskFailure,
	RiskAnomaly,
	RiskBudget,
	RiskBottleneck,
	RiskMisalignment,
}

// ValidRiskType reports whether r is a known risk type.
func ValidRiskType(r RiskType) bool {
	for _, rt := range RiskTypes {
		if r == rt {
			return true
		}
	}
	return false
}

// ForecastWindow is a fixed lookback bucket bounding which signals a
// predictor considers.
type ForecastWindow string

const (
	Window5m  ForecastWindow = "5m"
	Window30m ForecastWindow = "30m"
	Window6h  ForecastWindow = "6h"
	Window24h ForecastWindow = "24h"
	Window7d  ForecastWindow = "7d"
)

// ShortWindows are recomputed on every ingest; they are cheap and the
// most sensitive to fresh signals. The long windows (24h, 7d) are
// generated on demand or by an external scheduler.
var ShortWindows = []ForecastWindow{Window5m, Window30m, Window6h}

// Windows lists all supported windows.
var Windows = []ForecastWindow{Window5m, Window30m, Window6h, Window24h, Window7d}

// ValidWindow reports whether w is one of the five fixed buckets.
func ValidWindow(w ForecastWindow) bool {
	for _, fw := range Windows {
		if w == fw {
			return true
		}
	}
	return false
}

// RecommendedAction is what the engine advises a consuming system to
// do about a forecast. The engine never executes actions itself.
type RecommendedAction string

const (
	ActionMonitor         RecommendedAction = "monitor"
	ActionWarn            RecommendedAction = "warn"
	ActionRequireApproval RecommendedAction = "require_approval"
	ActionAutoEscalate    RecommendedAction = "auto_escalate"
	ActionBlockFuture     RecommendedAction = "block_future"
)

// ValidAction reports whether a is a known recommended action.
func ValidAction(a RecommendedAction) bool {
	switch a {
	case ActionMonitor, ActionWarn, ActionRequireApproval, ActionAutoEscalate, ActionBlockFuture:
		return true
	}
	return false
}

// ForecastEvent is a confidence-scored risk prediction. Events are
// written once per predictor invocation that clears the emission
// threshold and never mutated afterwards.
type ForecastEvent struct {
	ID                string            `json:"id" gorm:"primaryKey"`
	OrganizationID    string            `json:"organization_id" gorm:"index"`
	SignalSource      SourceType        `json:"signal_source"`
	RiskType          RiskType          `json:"risk_type"`
	Confidence        int               `json:"confidence"`
	ForecastWindow    ForecastWindow    `json:"forecast_window"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	RawFeatures       JSONMap           `json:"raw_features" gorm:"type:text"`
	CreatedAt         time.Time         `json:"created_at" gorm:"index"`
}
