package predictors

import "prediction-engine/models"

// GroupedSignals partitions one window's signals by source. A fixed
// field per source keeps dispatch typed; a missing group is an empty
// slice and means "no evidence", never an error.
type GroupedSignals struct {
	CognitiveEval []models.Signal
	ActionSafety  []models.Signal
	ApprovalQueue []models.Signal
	Orchestration []models.Signal
	CodeReview    []models.Signal
	Voice         []models.Signal
	Billing       []models.Signal
}

// GroupBySource partitions signals into a GroupedSignals. Signals with
// an unknown source type are dropped; they cannot have been ingested
// through the validated entry point.
func GroupBySource(signals []models.Signal) *GroupedSignals {
	g := &GroupedSignals{}
	for _, s := range signals {
		switch s.SourceType {
		case models.SourceCognitiveEval:
			g.CognitiveEval = append(g.CognitiveEval, s)
		case models.SourceActionSafety:
			g.ActionSafety = append(g.ActionSafety, s)
		case models.SourceApprovalQueue:
			g.ApprovalQueue = append(g.ApprovalQueue, s)
		case models.SourceOrchestration:
			g.Orchestration = append(g.Orchestration, s)
		case models.SourceCodeReview:
			g.CodeReview = append(g.CodeReview, s)
		case models.SourceVoice:
			g.Voice = append(g.Voice, s)
		case models.SourceBilling:
			g.Billing = append(g.Billing, s)
		}
	}
	return g
}

// Empty reports whether no source contributed any signal.
func (g *GroupedSignals) Empty() bool {
	return len(g.CognitiveEval) == 0 &&
		len(g.ActionSafety) == 0 &&
		len(g.ApprovalQueue) == 0 &&
		len(g.Orchestration) == 0 &&
		len(g.CodeReview) == 0 &&
		len(g.Voice) == 0 &&
		len(g.Billing) == 0
}
