package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/common"
	"github.com/triage-ai/triage-guard/pkg/guard"
	"github.com/triage-ai/triage-guard/pkg/handlers/http/request"
	"github.com/triage-ai/triage-guard/pkg/infra/prometheus"
)

type promptGuardHandler struct {
	logger      *logrus.Logger
	promptGuard *guard.PromptGuard
}

func NewPromptGuardHandler(logger *logrus.Logger, promptGuard *guard.PromptGuard) Handler {
	return &promptGuardHandler{
		logger:      logger,
		promptGuard: promptGuard,
	}
}

func (h *promptGuardHandler) Handle(c *fiber.Ctx) error {
	if h.promptGuard == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "prompt guard is not enabled"})
	}

	var req request.PromptGuardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !h.promptGuard.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "prompt guard is warming up"})
	}

	verdict, err := h.promptGuard.Check(c.Context(), req.Text)
	if err != nil {
		h.logger.WithError(err).Error("prompt guard classification failed")
		prometheus.ClassifierErrors.WithLabelValues(common.PromptGuardModelName).Inc()
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "classification failed"})
	}

	return c.Status(fiber.StatusOK).JSON(verdict)
}
