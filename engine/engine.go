// Package engine wires the forecasting pipeline: signal cache, window
// grouper, predictor set, policy rules, action recommendation, and the
// forecast store.
package engine

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"prediction-engine/cache"
	"prediction-engine/config"
	"prediction-engine/forecast"
	"prediction-engine/metrics"
	"prediction-engine/models"
	"prediction-engine/policy"
	"prediction-engine/predictors"
)

// Engine is the ingestion entry point and on-demand forecast generator.
type Engine struct {
	cache     *cache.SignalCache
	grouper   *Grouper
	forecasts *forecast.Store
	rules     *policy.RuleStore
	cfg       *config.Config
	set       []predictors.Named
	log       *slog.Logger
}

// New creates an engine over db with the default predictor set.
func New(db *gorm.DB, cfg *config.Config, log *slog.Logger) *Engine {
	c := cache.New(db)
	return &Engine{
		cache:     c,
		grouper:   NewGrouper(c),
		forecasts: forecast.NewStore(db),
		rules:     policy.NewRuleStore(db),
		cfg:       cfg,
		set:       predictors.All(),
		log:       log,
	}
}

// WithPredictors replaces the predictor set. Used by tests to inject
// failing predictors.
func (e *Engine) WithPredictors(set []predictors.Named) *Engine {
	e.set = set
	return e
}

// Cache exposes the signal cache for diagnostics and the reaper.
func (e *Engine) Cache() *cache.SignalCache { return e.cache }

// Forecasts exposes the forecast store for query handlers.
func (e *Engine) Forecasts() *forecast.Store { return e.forecasts }

// Rules exposes the rule store for the management handlers.
func (e *Engine) Rules() *policy.RuleStore { return e.rules }

// Ingest validates and caches a batch of signals, then regenerates
// forecasts for the short windows. The batch succeeds or fails as a
// whole: a validation failure or cache write error caches nothing and
// generates nothing.
func (e *Engine) Ingest(orgID string, signals []models.Signal) (int, []models.ForecastEvent, error) {
	if orgID == "" {
		return 0, nil, ErrMissingOrganization
	}
	if len(signals) == 0 {
		return 0, nil, ErrEmptyBatch
	}
	for _, s := range signals {
		if !models.ValidSourceType(s.SourceType) {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, s.SourceType)
		}
	}

	if err := e.cache.Ingest(orgID, signals); err != nil {
		return 0, nil, err
	}
	for _, s := range signals {
		metrics.SignalsIngested.WithLabelValues(string(s.SourceType)).Inc()
	}

	// The long windows (24h, 7d) are generated on demand instead, to
	// bound per-ingest cost.
	var generated []models.ForecastEvent
	for _, window := range models.ShortWindows {
		events, err := e.generate(orgID, window)
		if err != nil {
			return len(signals), generated, err
		}
		generated = append(generated, events...)
	}
	return len(signals), generated, nil
}

// Generate runs the full pipeline for one window on demand, for the
// long windows not covered by ingest-triggered generation.
func (e *Engine) Generate(orgID string, window models.ForecastWindow) ([]models.ForecastEvent, error) {
	if orgID == "" {
		return nil, ErrMissingOrganization
	}
	if !models.ValidWindow(window) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, window)
	}
	return e.generate(orgID, window)
}

func (e *Engine) generate(orgID string, window models.ForecastWindow) ([]models.ForecastEvent, error) {
	grouped, err := e.grouper.Group(orgID, window)
	if err != nil {
		return nil, err
	}
	events := []models.ForecastEvent{}
	if grouped.Empty() {
		return events, nil
	}

	rules, err := e.rules.List(orgID)
	if err != nil {
		return nil, err
	}

	for _, p := range e.set {
		candidate := e.runPredictor(p, grouped, orgID, window)
		if candidate == nil {
			continue
		}
		// The builder already bounds the score; re-check here so a
		// misbehaving predictor can never persist an out-of-range
		// confidence.
		if candidate.Confidence < e.cfg.Predictors.EmissionThreshold {
			e.log.Warn("discarding sub-threshold candidate",
				"predictor", p.Name,
				"org_id", orgID,
				"confidence", candidate.Confidence,
			)
			continue
		}
		if candidate.Confidence > e.cfg.Predictors.MaxConfidence {
			candidate.Confidence = e.cfg.Predictors.MaxConfidence
		}

		event := models.ForecastEvent{
			OrganizationID: orgID,
			SignalSource:   candidate.SignalSource,
			RiskType:       candidate.RiskType,
			Confidence:     candidate.Confidence,
			ForecastWindow: window,
			RawFeatures:    candidate.RawFeatures,
		}
		if action, matched := policy.ApplyRules(&event, rules); matched {
			event.RecommendedAction = action
		} else {
			event.RecommendedAction = policy.DefaultAction(event.Confidence, event.RiskType)
		}

		if err := e.forecasts.Save(&event); err != nil {
			return events, err
		}
		metrics.ForecastsEmitted.WithLabelValues(string(event.RiskType)).Inc()
		e.log.Info("forecast emitted",
			"org_id", orgID,
			"window", window,
			"risk_type", event.RiskType,
			"confidence", event.Confidence,
			"action", event.RecommendedAction,
		)
		events = append(events, event)
	}
	return events, nil
}

// runPredictor invokes one predictor, isolating panics so a single
// failing predictor cannot abort the other four.
func (e *Engine) runPredictor(p predictors.Named, grouped *predictors.GroupedSignals, orgID string, window models.ForecastWindow) (candidate *predictors.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			candidate = nil
			metrics.PredictorFailures.WithLabelValues(p.Name).Inc()
			e.log.Error("predictor failed",
				"predictor", p.Name,
				"org_id", orgID,
				"window", window,
				"error", fmt.Sprint(r),
			)
		}
	}()
	return p.Predict(grouped, e.cfg.Predictors)
}
