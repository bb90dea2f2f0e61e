package telemetry

import "time"

const (
	DecisionKindToolGuard   = "tool_guard"
	DecisionKindPromptGuard = "prompt_guard"
)

// DecisionEvent records one scoring decision for downstream analytics.
// Raw interaction text is not carried, only the prompt hash, so the event
// stream stays free of user content.
type DecisionEvent struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	PromptSHA256   string    `json:"prompt_sha256"`
	Malicious      string    `json:"malicious,omitempty"`
	Attacked       string    `json:"attacked,omitempty"`
	Harmfulness    float64   `json:"harmfulness,omitempty"`
	CompositeScore float64   `json:"composite_score,omitempty"`
	Label          string    `json:"label,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	Cached         bool      `json:"cached"`
	LatencyMS      float64   `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
