package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/common"
	"github.com/triage-ai/triage-guard/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger   *logrus.Logger
	taskChan chan func()
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	m := &metricsMiddleware{
		logger:   logger,
		taskChan: make(chan func(), 1000),
	}
	go m.startWorkers(5)
	return m
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(common.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals(common.RequestIdKey, requestID)
		c.Set(common.RequestIDHeader, requestID)

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		model := modelFromPath(c.Path())
		method := c.Method()
		statusCode := c.Response().StatusCode()

		m.enqueueTask(func() {
			m.registerMetrics(model, method, statusCode, elapsed)
		})

		return err
	}
}

func modelFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, "/tool-guard"):
		return common.ToolGuardModelName
	case strings.HasSuffix(path, "/prompt-guard"):
		return common.PromptGuardModelName
	default:
		return "none"
	}
}

func (m *metricsMiddleware) registerMetrics(model, method string, statusCode int, elapsed time.Duration) {
	status := fmt.Sprintf("%dxx", statusCode/100)
	prometheus.GuardRequestTotal.WithLabelValues(model, method, status).Inc()
	if prometheus.Config.EnableLatency {
		prometheus.GuardRequestLatency.WithLabelValues(model).
			Observe(float64(elapsed.Microseconds()) / 1000)
	}
}

func (m *metricsMiddleware) startWorkers(n int) {
	for i := 0; i < n; i++ {
		go func() {
			for task := range m.taskChan {
				task()
			}
		}()
	}
}

func (m *metricsMiddleware) enqueueTask(task func()) {
	select {
	case m.taskChan <- task:
	default:
		m.logger.Warn("taskChan is full, dropping metrics task")
	}
}
