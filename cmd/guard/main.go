package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	appApikey "github.com/triage-ai/triage-guard/pkg/app/apikey"
	"github.com/triage-ai/triage-guard/pkg/cache"
	"github.com/triage-ai/triage-guard/pkg/classifier"
	"github.com/triage-ai/triage-guard/pkg/common"
	"github.com/triage-ai/triage-guard/pkg/config"
	"github.com/triage-ai/triage-guard/pkg/domain/telemetry"
	"github.com/triage-ai/triage-guard/pkg/guard"
	handlers "github.com/triage-ai/triage-guard/pkg/handlers/http"
	"github.com/triage-ai/triage-guard/pkg/infra/database"
	"github.com/triage-ai/triage-guard/pkg/infra/httpx"
	infraLogger "github.com/triage-ai/triage-guard/pkg/infra/logger"
	"github.com/triage-ai/triage-guard/pkg/infra/repository"
	infraTelemetry "github.com/triage-ai/triage-guard/pkg/infra/telemetry"
	"github.com/triage-ai/triage-guard/pkg/infra/telemetry/kafka"
	"github.com/triage-ai/triage-guard/pkg/middleware"
	"github.com/triage-ai/triage-guard/pkg/server"
	"github.com/triage-ai/triage-guard/pkg/version"

	_ "github.com/triage-ai/triage-guard/pkg/infra/migrations"
)

func main() {
	ctx := context.Background()
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger("guard")

	info := version.GetInfo()
	logger.WithFields(logrus.Fields{
		"version":    info.Version,
		"go_version": info.GoVersion,
		"platform":   info.Platform,
	}).Infof("starting %s", info.AppName)

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	cacheInstance := initializeCache(cfg, logger)

	var apiKeyFinder appApikey.Finder
	if cfg.Database.Enabled {
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

		if cfg.Auth.Enabled {
			if cacheInstance == nil {
				logger.Fatal("api key auth requires redis to be enabled")
			}
			apiKeyFinder = appApikey.NewFinder(
				repository.NewApiKeyRepository(db.DB),
				cacheInstance,
				logger,
			)
		}
	} else if cfg.Auth.Enabled {
		logger.Fatal("api key auth requires the database to be enabled")
	}

	exporter := initializeExporter(cfg, logger)

	toolGuard, promptGuard := initializeGuards(cfg, cacheInstance, exporter, logger)

	warmupCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := toolGuard.Warmup(warmupCtx); err != nil {
		logger.WithError(err).Error("tool guard warmup failed, serving degraded")
	}
	if promptGuard != nil {
		if err := promptGuard.Warmup(warmupCtx); err != nil {
			logger.WithError(err).Error("prompt guard warmup failed, serving degraded")
		}
	}

	middlewareTransport := middleware.Transport{
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
	}
	if apiKeyFinder != nil {
		middlewareTransport.AuthMiddleware = middleware.NewAuthMiddleware(logger, apiKeyFinder)
	}

	var promptGuardChecker handlers.ReadinessChecker
	if promptGuard != nil {
		promptGuardChecker = promptGuard
	}
	handlerTransport := handlers.HandlerTransport{
		ToolGuardHandler:   handlers.NewToolGuardHandler(logger, toolGuard),
		PromptGuardHandler: handlers.NewPromptGuardHandler(logger, promptGuard),
		HealthHandler:      handlers.NewHealthHandler(toolGuard, promptGuardChecker),
	}

	srv := server.NewGuardServer(server.GuardServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	if exporter != nil {
		exporter.Close()
	}
	fmt.Println("server gracefully stopped")
}

func initializeCache(cfg *config.Config, logger *logrus.Logger) *cache.Cache {
	if !cfg.Redis.Enabled {
		logger.Info("redis is disabled, verdict caching is off")
		return nil
	}
	cacheInstance, err := cache.NewCache(common.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	_ = cacheInstance.CreateTTLMap(cache.ApiKeyTTLName, common.ApiKeyCacheTTL)
	_ = cacheInstance.CreateTTLMap(cache.ResultTTLName, common.ResultCacheTTL)
	return cacheInstance
}

func initializeExporter(cfg *config.Config, logger *logrus.Logger) telemetry.Exporter {
	if cfg.Telemetry.Exporter == "" {
		return nil
	}
	locator := infraTelemetry.NewExporterLocator(
		infraTelemetry.WithExporter(kafka.ExporterName, kafka.NewKafkaExporter()),
	)
	exporter, err := locator.GetExporter(cfg.Telemetry.Exporter, cfg.Telemetry.Settings)
	if err != nil {
		logger.Fatalf("Failed to initialize telemetry exporter: %v", err)
	}
	return exporter
}

func initializeGuards(
	cfg *config.Config,
	cacheInstance *cache.Cache,
	exporter telemetry.Exporter,
	logger *logrus.Logger,
) (*guard.ToolGuard, *guard.PromptGuard) {
	labels, err := guard.LoadClassifierConfigOrDefault(cfg.Classifier.ConfigPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load classifier config: %v", err)
	}

	client := httpx.NewFastHTTPClient(httpx.FastHTTPClientConfig{
		Timeout: time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second,
	})

	var resultCache guard.ResultCache
	if cacheInstance != nil {
		resultCache = cacheInstance
	}

	toolGuard := guard.NewToolGuard(
		classifier.NewHTTPPredictor(
			classifier.HTTPPredictorConfig{
				BaseURL: cfg.Classifier.BaseURL,
				Token:   cfg.Classifier.Token,
			},
			client,
			httpx.NewCircuitBreaker(
				"tool-guard",
				time.Duration(cfg.Classifier.BreakerTimeout)*time.Second,
				cfg.Classifier.MaxFailures,
			),
			logger,
		),
		labels,
		resultCache,
		time.Duration(cfg.Classifier.CacheTTLMin)*time.Minute,
		exporter,
		logger,
	)

	var promptGuard *guard.PromptGuard
	if cfg.PromptGuard.Enabled {
		promptGuard = guard.NewPromptGuard(
			classifier.NewHTTPTextClassifier(
				classifier.HTTPTextClassifierConfig{
					BaseURL: cfg.PromptGuard.BaseURL,
					Token:   cfg.PromptGuard.Token,
				},
				client,
				httpx.NewCircuitBreaker(
					"prompt-guard",
					time.Duration(cfg.Classifier.BreakerTimeout)*time.Second,
					cfg.Classifier.MaxFailures,
				),
				logger,
			),
			exporter,
			logger,
		)
	}

	return toolGuard, promptGuard
}
