package eval

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/distill"
	"github.com/triage-ai/triage-guard/pkg/guard"
)

// ReferenceResults holds the published 7B reference model numbers
// (strict mode) the distilled classifier is compared against.
var ReferenceResults = map[string]Metrics{
	"agentharm": {Accuracy: 0.8481, F1: 0.9016, Recall: 0.9695},
	"asb":       {Accuracy: 0.9497, F1: 0.9476, Recall: 0.9385},
	"agentdojo": {Accuracy: 0.9172, F1: 0.8618, Recall: 0.8949},
}

// LatencyStats summarizes per-sample scoring latency.
type LatencyStats struct {
	AvgMS float64 `json:"avg_ms"`
	P50MS float64 `json:"p50_ms"`
	P99MS float64 `json:"p99_ms"`
}

// Scorer is the scoring surface under evaluation. *guard.ToolGuard
// implements it.
type Scorer interface {
	Score(ctx context.Context, in guard.Interaction) (*guard.ToolVerdict, error)
}

// DatasetResult is the harness output for one dataset.
type DatasetResult struct {
	Dataset   string       `json:"dataset"`
	Mode      ScoreMode    `json:"score_mode"`
	Metrics   Metrics      `json:"metrics"`
	Latency   LatencyStats `json:"latency"`
	Reference *Metrics     `json:"reference,omitempty"`
}

// Harness runs a scorer over benchmark samples and computes metrics.
type Harness struct {
	scorer Scorer
	logger *logrus.Logger
}

func NewHarness(scorer Scorer, logger *logrus.Logger) *Harness {
	return &Harness{scorer: scorer, logger: logger}
}

// EvaluateDataset scores every sample and compares against ground truth.
// Scoring errors count as unparseable predictions and drop out pairwise
// rather than aborting the run.
func (h *Harness) EvaluateDataset(
	ctx context.Context,
	dataset string,
	samples []distill.Sample,
	mode ScoreMode,
) (*DatasetResult, error) {
	preds := make([]*float64, 0, len(samples))
	labels := make([]float64, 0, len(samples))
	latencies := make([]float64, 0, len(samples))

	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		verdict, err := h.scorer.Score(ctx, guard.Interaction{
			UserRequest:        s.Instruction,
			InteractionHistory: s.History,
			CurrentAction:      s.CurrentAction,
			EnvInfo:            s.EnvInfo,
		})
		if err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"dataset": dataset,
				"index":   i,
			}).Warn("scoring failed, sample excluded")
			preds = append(preds, nil)
		} else {
			score := verdict.CompositeScore
			preds = append(preds, &score)
			latencies = append(latencies, verdict.LatencyMS)
		}
		labels = append(labels, s.GroundTruth)
	}

	result := &DatasetResult{
		Dataset: dataset,
		Mode:    mode,
		Metrics: Compute(preds, labels, mode),
		Latency: SummarizeLatencies(latencies),
	}
	if ref, ok := ReferenceResults[dataset]; ok && mode == ScoreModeStrict {
		result.Reference = &ref
	}

	h.logger.WithFields(logrus.Fields{
		"dataset":  dataset,
		"mode":     mode,
		"accuracy": result.Metrics.Accuracy,
		"f1":       result.Metrics.F1,
		"recall":   result.Metrics.Recall,
		"n_valid":  result.Metrics.NValid,
		"n_total":  result.Metrics.NTotal,
	}).Info("dataset evaluated")
	return result, nil
}

// SummarizeLatencies computes avg/p50/p99 over per-sample latencies.
func SummarizeLatencies(ms []float64) LatencyStats {
	if len(ms) == 0 {
		return LatencyStats{}
	}
	sorted := make([]float64, len(ms))
	copy(sorted, ms)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return LatencyStats{
		AvgMS: sum / float64(len(sorted)),
		P50MS: percentile(sorted, 0.50),
		P99MS: percentile(sorted, 0.99),
	}
}

func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}
