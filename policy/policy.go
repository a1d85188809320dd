// Package policy decides the recommended action for a candidate
// forecast: operator-defined rules first, the default confidence band
// mapping as the fallback. The engine only recommends; it never blocks
// or executes anything.
package policy

import "prediction-engine/models"

// ApplyRules evaluates rules against a candidate forecast in the order
// supplied by the caller and returns the action of the first matching
// enabled rule. All specified predicate fields must match; unspecified
// fields are wildcards. A rule carrying an unknown action is treated
// as non-matching so one bad rule can never block forecasting.
func ApplyRules(f *models.ForecastEvent, rules []models.PolicyRule) (models.RecommendedAction, bool) {
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if !models.ValidAction(rule.RecommendedAction) {
			continue
		}
		if rule.RiskType != "" && rule.RiskType != f.RiskType {
			continue
		}
		if rule.SignalSource != "" && rule.SignalSource != f.SignalSource {
			continue
		}
		if rule.MinConfidence > 0 && f.Confidence < rule.MinConfidence {
			continue
		}
		return rule.RecommendedAction, true
	}
	return "", false
}

// DefaultAction maps confidence and risk type to an action when no
// policy rule matched.
//
// Budget risk is checked before the escalate band: exceeding spend is
// an approval decision at any confidence, not an escalation.
func DefaultAction(confidence int, risk models.RiskType) models.RecommendedAction {
	switch {
	case risk == models.RiskMisalignment:
		return models.ActionBlockFuture
	case risk == models.RiskFailure && confidence >= 80:
		return models.ActionBlockFuture
	case risk == models.RiskBudget:
		return models.ActionRequireApproval
	case confidence >= 70:
		return models.ActionAutoEscalate
	case confidence >= 50:
		return models.ActionRequireApproval
	case confidence >= 30:
		return models.ActionWarn
	default:
		// Unreachable through the emission threshold, kept as the
		// safe fallback.
		return models.ActionMonitor
	}
}
