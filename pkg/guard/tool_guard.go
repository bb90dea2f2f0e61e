package guard

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/classifier"
	"github.com/triage-ai/triage-guard/pkg/domain/telemetry"
	"golang.org/x/sync/singleflight"
)

const toolGuardKeyPattern = "toolguard:result:%x"

// ResultCache is the subset of the cache layer the guards need. Verdicts
// are immutable per prompt, so there is no invalidation path.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// ToolVerdict is the scoring result for a single tool call.
type ToolVerdict struct {
	Malicious      string  `json:"malicious"`
	Attacked       string  `json:"attacked"`
	Harmfulness    float64 `json:"harmfulness"`
	CompositeScore float64 `json:"composite_score"`
	Cached         bool    `json:"cached,omitempty"`
	LatencyMS      float64 `json:"latency_ms"`
}

// ToolGuard scores agent tool calls through the three-head classifier and
// the composite fusion policy. Cache and exporter are optional; a nil value
// disables the concern.
type ToolGuard struct {
	predictor classifier.Predictor
	labels    *ClassifierConfig
	cache     ResultCache
	cacheTTL  time.Duration
	exporter  telemetry.Exporter
	logger    *logrus.Logger
	group     singleflight.Group
	ready     atomic.Bool
}

func NewToolGuard(
	predictor classifier.Predictor,
	labels *ClassifierConfig,
	cache ResultCache,
	cacheTTL time.Duration,
	exporter telemetry.Exporter,
	logger *logrus.Logger,
) *ToolGuard {
	return &ToolGuard{
		predictor: predictor,
		labels:    labels,
		cache:     cache,
		cacheTTL:  cacheTTL,
		exporter:  exporter,
		logger:    logger,
	}
}

// Ready reports whether warmup has completed.
func (g *ToolGuard) Ready() bool {
	return g.ready.Load()
}

// Warmup runs one inference end to end so the first real request does not
// pay the cold-start cost, then marks the guard ready.
func (g *ToolGuard) Warmup(ctx context.Context) error {
	g.logger.Info("warming up tool guard")
	start := time.Now()
	_, err := g.Score(ctx, Interaction{
		UserRequest:   "What is the weather?",
		CurrentAction: `get_weather("SF")`,
		EnvInfo:       "get_weather: Get current weather",
	})
	if err != nil {
		return fmt.Errorf("tool guard warmup: %w", err)
	}
	g.ready.Store(true)
	g.logger.WithField("elapsed_ms", float64(time.Since(start).Microseconds())/1000).
		Info("tool guard warmup complete")
	return nil
}

// Score evaluates one tool call. Identical prompts share a cache entry
// keyed by prompt hash, and concurrent duplicates collapse to a single
// classifier call.
func (g *ToolGuard) Score(ctx context.Context, in Interaction) (*ToolVerdict, error) {
	start := time.Now()
	prompt := FormatPrompt(in)
	sum := sha256.Sum256([]byte(prompt))
	cacheKey := fmt.Sprintf(toolGuardKeyPattern, sum)

	if g.cache != nil {
		if raw, err := g.cache.Get(ctx, cacheKey); err == nil {
			cached := new(ToolVerdict)
			if err := json.Unmarshal([]byte(raw), cached); err != nil {
				g.logger.WithError(err).Warn("discarding malformed cached verdict")
			} else {
				cached.Cached = true
				cached.LatencyMS = elapsedMS(start)
				g.emit(sum, cached)
				return cached, nil
			}
		}
	}

	result, err, _ := g.group.Do(cacheKey, func() (interface{}, error) {
		return g.classify(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	shared, ok := result.(*ToolVerdict)
	if !ok {
		return nil, fmt.Errorf("unexpected verdict type %T", result)
	}

	verdict := *shared
	verdict.LatencyMS = elapsedMS(start)

	if g.cache != nil {
		data, err := json.Marshal(shared)
		if err == nil {
			if err := g.cache.Set(ctx, cacheKey, string(data), g.cacheTTL); err != nil {
				g.logger.WithError(err).Warn("failed to cache tool guard verdict")
			}
		}
	}
	g.emit(sum, &verdict)
	return &verdict, nil
}

func (g *ToolGuard) classify(ctx context.Context, prompt string) (*ToolVerdict, error) {
	heads, err := g.predictor.Predict(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifier predict: %w", err)
	}
	triple, err := g.labels.Resolve(heads.Malicious, heads.Attacked, heads.Harmfulness)
	if err != nil {
		return nil, err
	}
	return &ToolVerdict{
		Malicious:      triple.Malicious,
		Attacked:       triple.Attacked,
		Harmfulness:    triple.Harmfulness,
		CompositeScore: CompositeScore(triple),
	}, nil
}

func (g *ToolGuard) emit(promptSum [sha256.Size]byte, v *ToolVerdict) {
	if g.exporter == nil {
		return
	}
	event := &telemetry.DecisionEvent{
		ID:             uuid.NewString(),
		Kind:           telemetry.DecisionKindToolGuard,
		PromptSHA256:   fmt.Sprintf("%x", promptSum),
		Malicious:      v.Malicious,
		Attacked:       v.Attacked,
		Harmfulness:    v.Harmfulness,
		CompositeScore: v.CompositeScore,
		Cached:         v.Cached,
		LatencyMS:      v.LatencyMS,
		CreatedAt:      time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.exporter.Handle(ctx, event); err != nil {
			g.logger.WithError(err).Warn("failed to export decision event")
		}
	}()
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
