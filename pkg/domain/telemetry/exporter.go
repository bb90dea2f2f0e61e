package telemetry

import "context"

// Exporter ships decision events to an external sink. Implementations are
// best-effort: a failed export must never fail the scoring request.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Handle(ctx context.Context, evt *DecisionEvent) error
	Close()
}
