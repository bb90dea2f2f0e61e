package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/common"
	"github.com/triage-ai/triage-guard/pkg/guard"
	"github.com/triage-ai/triage-guard/pkg/handlers/http/request"
	"github.com/triage-ai/triage-guard/pkg/infra/prometheus"
)

type toolGuardHandler struct {
	logger    *logrus.Logger
	toolGuard *guard.ToolGuard
}

func NewToolGuardHandler(logger *logrus.Logger, toolGuard *guard.ToolGuard) Handler {
	return &toolGuardHandler{
		logger:    logger,
		toolGuard: toolGuard,
	}
}

func (h *toolGuardHandler) Handle(c *fiber.Ctx) error {
	var req request.ToolGuardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !h.toolGuard.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "tool guard is warming up"})
	}

	verdict, err := h.toolGuard.Score(c.Context(), guard.Interaction{
		UserRequest:        req.UserRequest,
		InteractionHistory: req.InteractionHistory,
		CurrentAction:      req.CurrentAction,
		EnvInfo:            req.EnvInfo,
	})
	if err != nil {
		h.logger.WithError(err).Error("tool guard scoring failed")
		prometheus.ClassifierErrors.WithLabelValues(common.ToolGuardModelName).Inc()
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "scoring failed"})
	}

	if prometheus.Config.EnableScores {
		prometheus.GuardCompositeScore.WithLabelValues(fmt.Sprintf("%.1f", verdict.CompositeScore)).Inc()
	}
	if verdict.Cached && prometheus.Config.EnableCache {
		prometheus.GuardCacheHits.WithLabelValues(common.ToolGuardModelName).Inc()
	}

	return c.Status(fiber.StatusOK).JSON(verdict)
}
