package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/classifier"
	"github.com/triage-ai/triage-guard/pkg/config"
	"github.com/triage-ai/triage-guard/pkg/distill"
	"github.com/triage-ai/triage-guard/pkg/eval"
	"github.com/triage-ai/triage-guard/pkg/guard"
	"github.com/triage-ai/triage-guard/pkg/infra/database"
	"github.com/triage-ai/triage-guard/pkg/infra/httpx"
	infraLogger "github.com/triage-ai/triage-guard/pkg/infra/logger"
	"github.com/triage-ai/triage-guard/pkg/infra/repository"

	_ "github.com/triage-ai/triage-guard/pkg/infra/migrations"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger("distill")

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	ctx := context.Background()

	switch command() {
	case "label":
		runLabel(ctx, cfg, logger)
	case "eval":
		runEval(ctx, cfg, logger)
	default:
		fmt.Println("usage: distill <label|eval> [score-mode]")
		os.Exit(2)
	}
}

func command() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return ""
}

func runLabel(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	samples, err := distill.LoadAll(cfg.Teacher.DataDir, logger)
	if err != nil {
		logger.Fatalf("Failed to load benchmark datasets: %v", err)
	}

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	teacher := distill.NewTeacherClient(distill.TeacherConfig{
		BaseURL:     cfg.Teacher.BaseURL,
		ApiKey:      cfg.Teacher.ApiKey,
		Model:       cfg.Teacher.Model,
		Temperature: cfg.Teacher.Temperature,
		MaxTokens:   cfg.Teacher.MaxTokens,
	}, logger)

	generator := distill.NewGenerator(
		teacher,
		repository.NewLabeledSampleRepository(db.DB),
		distill.GeneratorConfig{Workers: cfg.Teacher.Workers},
		logger,
	)

	startIdx, err := generator.ResumeIndex(ctx)
	if err != nil {
		logger.Fatalf("Failed to determine resume point: %v", err)
	}
	if startIdx > 0 {
		logger.WithField("resume_index", startIdx).Info("resuming from previous run")
	}

	summary, err := generator.Run(ctx, samples, startIdx)
	if err != nil {
		logger.Fatalf("Labeling run failed: %v", err)
	}

	fmt.Printf("labeled %d samples (%d parse failures) in %s (%.1f samples/sec)\n",
		summary.Total, summary.ParseFailures, summary.Elapsed.Round(time.Second), summary.SamplesPerSec)
	fmt.Printf("ground truth distribution: %v\n", summary.GroundTruth)
	fmt.Printf("teacher score distribution: %v\n", summary.TeacherScores)
	fmt.Printf("teacher agreement with ground truth: %.2f%%\n", summary.AgreementRate*100)
}

func runEval(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	mode := eval.ScoreModeStrict
	if len(os.Args) > 2 {
		parsed, err := eval.ParseScoreMode(os.Args[2])
		if err != nil {
			logger.Fatalf("Invalid score mode: %v", err)
		}
		mode = parsed
	}

	labels, err := guard.LoadClassifierConfigOrDefault(cfg.Classifier.ConfigPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load classifier config: %v", err)
	}

	toolGuard := guard.NewToolGuard(
		classifier.NewHTTPPredictor(
			classifier.HTTPPredictorConfig{
				BaseURL: cfg.Classifier.BaseURL,
				Token:   cfg.Classifier.Token,
			},
			httpx.NewFastHTTPClient(httpx.FastHTTPClientConfig{
				Timeout: time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second,
			}),
			httpx.NewCircuitBreaker(
				"eval",
				time.Duration(cfg.Classifier.BreakerTimeout)*time.Second,
				cfg.Classifier.MaxFailures,
			),
			logger,
		),
		labels,
		nil,
		0,
		nil,
		logger,
	)

	harness := eval.NewHarness(toolGuard, logger)

	results := make([]*eval.DatasetResult, 0, len(distill.DatasetNames()))
	for _, name := range distill.DatasetNames() {
		samples, err := distill.LoadDataset(cfg.Teacher.DataDir, name, logger)
		if err != nil {
			logger.Fatalf("Failed to load dataset %s: %v", name, err)
		}
		result, err := harness.EvaluateDataset(ctx, name, samples, mode)
		if err != nil {
			logger.Fatalf("Evaluation of %s failed: %v", name, err)
		}
		results = append(results, result)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}
	fmt.Println(string(out))
}
