package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/config"
	handlers "github.com/triage-ai/triage-guard/pkg/handlers/http"
	"github.com/triage-ai/triage-guard/pkg/infra/prometheus"
	"github.com/triage-ai/triage-guard/pkg/middleware"
)

type (
	GuardServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	GuardServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

const PingPath = "/__/ping"

func NewGuardServer(di GuardServerDI) *GuardServer {
	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency: di.Config.Metrics.EnableLatency,
		EnableScores:  di.Config.Metrics.EnableScores,
		EnableCache:   di.Config.Metrics.EnableCache,
	})

	s := &GuardServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}

	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *GuardServer) Run() error {
	s.Router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	s.Router.Get("/health", s.handlerTransport.HealthHandler.Handle)

	s.Router.Use(s.middlewareTransport.RecoverMiddleware.Middleware())
	s.Router.Use(s.middlewareTransport.MetricsMiddleware.Middleware())
	if s.middlewareTransport.AuthMiddleware != nil {
		s.Router.Use(s.middlewareTransport.AuthMiddleware.Middleware())
	}

	v1 := s.Router.Group("/v1")
	{
		v1.Post("/tool-guard", s.handlerTransport.ToolGuardHandler.Handle)
		v1.Post("/prompt-guard", s.handlerTransport.PromptGuardHandler.Handle)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting guard server")
	return s.Router.Listen(addr)
}

func (s *GuardServer) Shutdown() error {
	return s.Router.Shutdown()
}
