package models

import "time"

// SourceType identifies the upstream subsystem that emitted a signal.
type SourceType string

const (
	SourceCognitiveEval SourceType = "cognitive-eval"
	SourceActionSafety  SourceType = "action-safety"
	SourceApprovalQueue SourceType = "approval-queue"
	SourceOrchestration SourceType = "orchestration"
	SourceCodeReview    SourceType = "code-review"
	SourceVoice         SourceType = "voice"
	SourceBilling       SourceType = "billing"

	// SourceAggregate is only valid on forecasts, when evidence from
	// more than one source contributed.
	SourceAggregate SourceType = "aggregate"
)

// SourceTypes lists every ingestable source, in a fixed order.
var SourceTypes = []SourceType{
	SourceCognitiveEval,
	SourceActionSafety,
	SourceApprovalQueue,
	SourceOrchestration,
	SourceCodeReview,
	SourceVoice,
	SourceBilling,
}

// ValidSourceType reports whether s names an ingestable source.
// SourceAggregate is deliberately excluded: it never appears on signals.
func ValidSourceType(s SourceType) bool {
	for _, st := range SourceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// Signal is a single timestamped event received from an upstream
// subsystem. Signals are append-only: created once at ingestion and
// removed only by the cache reaper, never updated.
type Signal struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	OrganizationID string     `json:"organization_id" gorm:"index"`
	SourceType     SourceType `json:"source_type"`
	Payload        JSONMap    `json:"payload" gorm:"type:text"`
	ReceivedAt     time.Time  `json:"received_at" gorm:"index"`
}

// PayloadString returns the named payload field as a string, or "" when
// absent or not a string.
func (s Signal) PayloadString(key string) string {
	v, ok := s.Payload[key].(string)
	if !ok {
		return ""
	}
	return v
}

// PayloadNumber returns the named payload field as a float64. JSON
// decoding produces float64 for all numbers; integers stored directly
// are converted. Returns 0 when absent or non-numeric.
func (s Signal) PayloadNumber(key string) float64 {
	switch v := s.Payload[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
