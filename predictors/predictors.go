// Package predictors holds the five risk predictors. Each is a pure
// function of one window's grouped signals plus the configured weights:
// evidence thresholds crossed in specific source groups add fixed
// weights to a confidence score, and a candidate is emitted only when
// the score clears the emission threshold.
package predictors

import (
	"prediction-engine/config"
	"prediction-engine/models"
)

// Candidate is a forecast produced by one predictor, before policy
// rules and persistence. RawFeatures records every examined count so
// the emitted forecast is auditable.
type Candidate struct {
	RiskType     models.RiskType
	Confidence   int
	SignalSource models.SourceType
	RawFeatures  models.JSONMap
}

// Func is the shared predictor shape. A nil result means the evidence
// in this window did not clear the emission threshold; that is not an
// error.
type Func func(g *GroupedSignals, cfg config.Predictors) *Candidate

// Named pairs a predictor with a stable name for logging and metrics.
type Named struct {
	Name    string
	Predict Func
}

// All returns the full predictor set in a fixed order.
func All() []Named {
	return []Named{
		{Name: "failure", Predict: PredictFailure},
		{Name: "anomaly", Predict: PredictAnomaly},
		{Name: "budget_risk", Predict: PredictBudgetRisk},
		{Name: "bottleneck", Predict: PredictBottleneck},
		{Name: "misalignment", Predict: PredictMisalignment},
	}
}

// PredictFailure scores the risk of imminent task failure from
// low-quality cognitive evaluations, safety blocks, and failed
// orchestration runs.
func PredictFailure(g *GroupedSignals, cfg config.Predictors) *Candidate {
	lowQuality := 0
	for _, s := range g.CognitiveEval {
		if s.PayloadNumber("score") < cfg.Failure.QualityFloor {
			lowQuality++
		}
	}
	blocked := countField(g.ActionSafety, "outcome", "blocked")
	failedRuns := countField(g.Orchestration, "status", "failed")

	b := newBuilder(models.RiskFailure, cfg)
	b.feature("low_quality_count", lowQuality)
	b.feature("block_count", blocked)
	b.feature("failed_run_count", failedRuns)
	if lowQuality > cfg.Failure.LowQualityCount {
		b.add(cfg.Failure.LowQualityWeight, models.SourceCognitiveEval)
	}
	if blocked > cfg.Failure.BlockedCount {
		b.add(cfg.Failure.BlockedWeight, models.SourceActionSafety)
	}
	if failedRuns > cfg.Failure.FailedRunCount {
		b.add(cfg.Failure.FailedRunWeight, models.SourceOrchestration)
	}
	return b.emit()
}

// PredictAnomaly scores anomalous behavior from high-risk cognitive
// evaluations, failed voice parses, and code reviews with failing
// tests.
func PredictAnomaly(g *GroupedSignals, cfg config.Predictors) *Candidate {
	highRisk := 0
	for _, s := range g.CognitiveEval {
		if s.PayloadNumber("risk_score") > cfg.Anomaly.RiskCeiling {
			highRisk++
		}
	}
	voiceFailed := countField(g.Voice, "status", "failed")
	failingReviews := 0
	for _, s := range g.CodeReview {
		if s.PayloadNumber("tests_failed") > 0 {
			failingReviews++
		}
	}

	b := newBuilder(models.RiskAnomaly, cfg)
	b.feature("high_risk_count", highRisk)
	b.feature("voice_fail_count", voiceFailed)
	b.feature("failing_review_count", failingReviews)
	if highRisk > cfg.Anomaly.HighRiskCount {
		b.add(cfg.Anomaly.HighRiskWeight, models.SourceCognitiveEval)
	}
	if voiceFailed > cfg.Anomaly.VoiceFailCount {
		b.add(cfg.Anomaly.VoiceFailWeight, models.SourceVoice)
	}
	if failingReviews > cfg.Anomaly.FailingTestCount {
		b.add(cfg.Anomaly.FailingTestWeight, models.SourceCodeReview)
	}
	return b.emit()
}

// PredictBudgetRisk scores budget exhaustion from the billing group's
// average consumption rate and the most recent budget utilization.
func PredictBudgetRisk(g *GroupedSignals, cfg config.Predictors) *Candidate {
	if len(g.Billing) == 0 {
		return nil
	}

	var rateSum float64
	latest := g.Billing[0]
	for _, s := range g.Billing {
		rateSum += s.PayloadNumber("consumption_rate")
		if s.ReceivedAt.After(latest.ReceivedAt) {
			latest = s
		}
	}
	avgRate := rateSum / float64(len(g.Billing))
	utilization := latest.PayloadNumber("budget_utilization")

	b := newBuilder(models.RiskBudget, cfg)
	b.feature("billing_count", len(g.Billing))
	b.feature("avg_consumption_rate", avgRate)
	b.feature("latest_utilization", utilization)
	if avgRate > cfg.Budget.RateCeiling {
		b.add(cfg.Budget.RateWeight, models.SourceBilling)
	}
	if utilization > cfg.Budget.UtilizationFloor {
		b.add(cfg.Budget.UtilizationWeight, models.SourceBilling)
	}
	return b.emit()
}

// PredictBottleneck scores workflow congestion from approvals stuck in
// the queue and orchestration runs exceeding the duration ceiling.
func PredictBottleneck(g *GroupedSignals, cfg config.Predictors) *Candidate {
	pending := countField(g.ApprovalQueue, "status", "pending")
	ceilingMs := float64(cfg.Bottleneck.DurationCeiling.D().Milliseconds())
	longRunning := 0
	for _, s := range g.Orchestration {
		if s.PayloadNumber("duration_ms") > ceilingMs {
			longRunning++
		}
	}

	b := newBuilder(models.RiskBottleneck, cfg)
	b.feature("pending_count", pending)
	b.feature("long_running_count", longRunning)
	if pending > cfg.Bottleneck.PendingCount {
		b.add(cfg.Bottleneck.PendingWeight, models.SourceApprovalQueue)
	}
	if longRunning > cfg.Bottleneck.LongRunningCount {
		b.add(cfg.Bottleneck.LongRunWeight, models.SourceOrchestration)
	}
	return b.emit()
}

// PredictMisalignment scores agent drift from sanitize recommendations,
// escalated approvals, and the accumulated risk-flag count.
func PredictMisalignment(g *GroupedSignals, cfg config.Predictors) *Candidate {
	sanitized := countField(g.ActionSafety, "outcome", "sanitize")
	escalated := countField(g.ApprovalQueue, "status", "escalated")
	riskFlags := 0
	for _, s := range g.ActionSafety {
		riskFlags += int(s.PayloadNumber("risk_flags"))
	}

	b := newBuilder(models.RiskMisalignment, cfg)
	b.feature("sanitize_count", sanitized)
	b.feature("escalated_count", escalated)
	b.feature("risk_flag_count", riskFlags)
	if sanitized > cfg.Misalignment.SanitizeCount {
		b.add(cfg.Misalignment.SanitizeWeight, models.SourceActionSafety)
	}
	if escalated > cfg.Misalignment.EscalatedCount {
		b.add(cfg.Misalignment.EscalatedWeight, models.SourceApprovalQueue)
	}
	if riskFlags > cfg.Misalignment.RiskFlagCount {
		b.add(cfg.Misalignment.RiskFlagWeight, models.SourceActionSafety)
	}
	return b.emit()
}

// countField counts signals whose named payload field equals value.
func countField(signals []models.Signal, key, value string) int {
	n := 0
	for _, s := range signals {
		if s.PayloadString(key) == value {
			n++
		}
	}
	return n
}

// builder accumulates weighted evidence into a candidate.
type builder struct {
	risk       models.RiskType
	cfg        config.Predictors
	confidence int
	sources    []models.SourceType
	features   models.JSONMap
}

func newBuilder(risk models.RiskType, cfg config.Predictors) *builder {
	return &builder{risk: risk, cfg: cfg, features: models.JSONMap{}}
}

func (b *builder) feature(key string, v any) {
	b.features[key] = v
}

func (b *builder) add(weight int, src models.SourceType) {
	b.confidence += weight
	for _, s := range b.sources {
		if s == src {
			return
		}
	}
	b.sources = append(b.sources, src)
}

// emit returns the candidate, or nil when the accumulated confidence
// is below the emission threshold. Confidence is capped; the source is
// the single contributing group, or aggregate when several contributed.
func (b *builder) emit() *Candidate {
	if b.confidence < b.cfg.EmissionThreshold {
		return nil
	}
	confidence := b.confidence
	if confidence > b.cfg.MaxConfidence {
		confidence = b.cfg.MaxConfidence
	}
	source := models.SourceAggregate
	if len(b.sources) == 1 {
		source = b.sources[0]
	}
	return &Candidate{
		RiskType:     b.risk,
		Confidence:   confidence,
		SignalSource: source,
		RawFeatures:  b.features,
	}
}
