package guard

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/classifier"
	"github.com/triage-ai/triage-guard/pkg/domain/telemetry"
)

// PromptVerdict is the injection / jailbreak classification of a raw text.
type PromptVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	LatencyMS  float64 `json:"latency_ms"`
}

// PromptGuard flags prompt-injection and jailbreak attempts in raw text.
type PromptGuard struct {
	classifier classifier.TextClassifier
	exporter   telemetry.Exporter
	logger     *logrus.Logger
	ready      atomic.Bool
}

func NewPromptGuard(
	textClassifier classifier.TextClassifier,
	exporter telemetry.Exporter,
	logger *logrus.Logger,
) *PromptGuard {
	return &PromptGuard{
		classifier: textClassifier,
		exporter:   exporter,
		logger:     logger,
	}
}

// Ready reports whether warmup has completed.
func (g *PromptGuard) Ready() bool {
	return g.ready.Load()
}

// Warmup classifies a fixed sentence once, then marks the guard ready.
func (g *PromptGuard) Warmup(ctx context.Context) error {
	g.logger.Info("warming up prompt guard")
	start := time.Now()
	if _, err := g.Check(ctx, "This is a warmup sentence."); err != nil {
		return fmt.Errorf("prompt guard warmup: %w", err)
	}
	g.ready.Store(true)
	g.logger.WithField("elapsed_ms", elapsedMS(start)).
		Info("prompt guard warmup complete")
	return nil
}

// Check classifies a raw text.
func (g *PromptGuard) Check(ctx context.Context, text string) (*PromptVerdict, error) {
	start := time.Now()
	result, err := g.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classifier classify: %w", err)
	}
	verdict := &PromptVerdict{
		Label:      result.Label,
		Confidence: result.Confidence,
		LatencyMS:  elapsedMS(start),
	}
	g.emit(text, verdict)
	return verdict, nil
}

func (g *PromptGuard) emit(text string, v *PromptVerdict) {
	if g.exporter == nil {
		return
	}
	event := &telemetry.DecisionEvent{
		ID:           uuid.NewString(),
		Kind:         telemetry.DecisionKindPromptGuard,
		PromptSHA256: fmt.Sprintf("%x", sha256.Sum256([]byte(text))),
		Label:        v.Label,
		Confidence:   v.Confidence,
		LatencyMS:    v.LatencyMS,
		CreatedAt:    time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.exporter.Handle(ctx, event); err != nil {
			g.logger.WithError(err).Warn("failed to export decision event")
		}
	}()
}
