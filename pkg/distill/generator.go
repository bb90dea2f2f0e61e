package distill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/domain/sample"
	"github.com/triage-ai/triage-guard/pkg/guard"
	"golang.org/x/sync/errgroup"
)

// GeneratorConfig tunes the labeling run. The inference server batches
// internally, so worker count only bounds in-flight requests.
type GeneratorConfig struct {
	Workers         int
	CheckpointEvery int
}

// Summary aggregates one labeling run.
type Summary struct {
	Total         int
	ParseFailures int
	GroundTruth   map[float64]int
	TeacherScores map[float64]int
	Agreements    int
	AgreementRate float64
	Elapsed       time.Duration
	SamplesPerSec float64
}

// Generator drives the teacher over a sample set and persists parsed
// verdicts. Samples are labeled in parallel but persisted in input order so
// an interrupted run can resume from the stored count.
type Generator struct {
	teacher TextGenerator
	repo    sample.Repository
	config  GeneratorConfig
	logger  *logrus.Logger
}

func NewGenerator(
	teacher TextGenerator,
	repo sample.Repository,
	config GeneratorConfig,
	logger *logrus.Logger,
) *Generator {
	if config.Workers <= 0 {
		config.Workers = 16
	}
	if config.CheckpointEvery <= 0 {
		config.CheckpointEvery = 200
	}
	return &Generator{
		teacher: teacher,
		repo:    repo,
		config:  config,
		logger:  logger,
	}
}

// ResumeIndex returns the number of samples already persisted, which is the
// next input index to label given order-preserving checkpoints.
func (g *Generator) ResumeIndex(ctx context.Context) (int, error) {
	_, total, err := g.repo.CountParsed(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count existing samples: %w", err)
	}
	return int(total), nil
}

// Run labels samples[startIdx:] and returns the run summary.
func (g *Generator) Run(ctx context.Context, samples []Sample, startIdx int) (*Summary, error) {
	n := len(samples)
	if startIdx >= n {
		g.logger.Info("all samples already labeled")
		return &Summary{GroundTruth: map[float64]int{}, TeacherScores: map[float64]int{}}, nil
	}
	g.logger.WithFields(logrus.Fields{
		"from":    startIdx,
		"to":      n - 1,
		"workers": g.config.Workers,
	}).Info("labeling samples")

	start := time.Now()
	results := make([]*sample.LabeledSample, n)
	var mu sync.Mutex
	flushed := startIdx
	sinceCheckpoint := 0

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.config.Workers)
	for i := startIdx; i < n; i++ {
		i := i
		grp.Go(func() error {
			labeled := g.labelOne(gctx, i, samples[i])

			mu.Lock()
			defer mu.Unlock()
			results[i] = labeled
			sinceCheckpoint++
			if sinceCheckpoint >= g.config.CheckpointEvery {
				sinceCheckpoint = 0
				if err := g.flushLocked(gctx, results, &flushed); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	mu.Lock()
	err := g.flushLocked(ctx, results, &flushed)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	summary := summarize(results[startIdx:], time.Since(start))
	g.logger.WithFields(logrus.Fields{
		"total":           summary.Total,
		"parse_failures":  summary.ParseFailures,
		"agreement_rate":  summary.AgreementRate,
		"samples_per_sec": summary.SamplesPerSec,
	}).Info("labeling run complete")
	return summary, nil
}

// flushLocked persists the contiguous labeled prefix. Caller holds the mutex;
// writing under it keeps checkpoints ordered, which resume depends on.
func (g *Generator) flushLocked(ctx context.Context, results []*sample.LabeledSample, flushed *int) error {
	var batch []sample.LabeledSample
	for *flushed < len(results) && results[*flushed] != nil {
		batch = append(batch, *results[*flushed])
		*flushed++
	}
	if len(batch) == 0 {
		return nil
	}
	if err := g.repo.SaveBatch(ctx, batch); err != nil {
		return fmt.Errorf("checkpoint save failed: %w", err)
	}
	g.logger.WithField("persisted", *flushed).Debug("checkpoint saved")
	return nil
}

func (g *Generator) labelOne(ctx context.Context, idx int, s Sample) *sample.LabeledSample {
	labeled := &sample.LabeledSample{
		ID:            uuid.New(),
		Dataset:       s.Dataset,
		SourceFile:    s.SourceFile,
		Index:         idx,
		Instruction:   s.Instruction,
		History:       s.History,
		CurrentAction: s.CurrentAction,
		EnvInfo:       s.EnvInfo,
		GroundTruth:   s.GroundTruth,
		CreatedAt:     time.Now().UTC(),
	}

	prompt := guard.FormatTeacherPrompt(guard.Interaction{
		UserRequest:        s.Instruction,
		InteractionHistory: s.History,
		CurrentAction:      s.CurrentAction,
		EnvInfo:            s.EnvInfo,
	})

	raw, err := g.teacher.Generate(ctx, prompt)
	if err != nil {
		g.logger.WithError(err).WithField("index", idx).Warn("teacher request failed for sample")
		return labeled
	}

	verdict, parseErr := ParseTeacherOutput(raw)
	if parseErr != nil {
		// one re-ask; low temperature makes repeats cheap and usually parseable
		if retryRaw, retryErr := g.teacher.Generate(ctx, prompt); retryErr == nil {
			if retryVerdict, err := ParseTeacherOutput(retryRaw); err == nil {
				raw, verdict = retryRaw, retryVerdict
			}
		}
	}

	labeled.TeacherRaw = raw
	if verdict != nil {
		labeled.TeacherMalicious = &verdict.Malicious
		labeled.TeacherAttacked = &verdict.Attacked
		labeled.TeacherHarmfulness = &verdict.Harmfulness
		labeled.TeacherComposite = &verdict.CompositeScore
		labeled.ParseSuccess = true
	}
	return labeled
}

func summarize(results []*sample.LabeledSample, elapsed time.Duration) *Summary {
	summary := &Summary{
		Total:         len(results),
		GroundTruth:   make(map[float64]int),
		TeacherScores: make(map[float64]int),
		Elapsed:       elapsed,
	}
	if elapsed > 0 {
		summary.SamplesPerSec = float64(len(results)) / elapsed.Seconds()
	}

	valid := 0
	for _, r := range results {
		if r == nil || !r.ParseSuccess {
			summary.ParseFailures++
			continue
		}
		valid++
		summary.GroundTruth[r.GroundTruth]++
		summary.TeacherScores[*r.TeacherComposite]++
		if r.GroundTruth == *r.TeacherComposite {
			summary.Agreements++
		}
	}
	if valid > 0 {
		summary.AgreementRate = float64(summary.Agreements) / float64(valid)
	}
	return summary
}
