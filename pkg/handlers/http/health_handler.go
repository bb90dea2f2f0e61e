package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/triage-ai/triage-guard/pkg/common"
)

// ReadinessChecker reports whether a guard model finished warmup.
type ReadinessChecker interface {
	Ready() bool
}

type healthHandler struct {
	models map[string]ReadinessChecker
}

// NewHealthHandler builds the health endpoint over the registered guard
// models. A nil checker marks the model as disabled and excluded from the
// readiness map.
func NewHealthHandler(toolGuard, promptGuard ReadinessChecker) Handler {
	models := make(map[string]ReadinessChecker)
	if toolGuard != nil {
		models[common.ToolGuardModelName] = toolGuard
	}
	if promptGuard != nil {
		models[common.PromptGuardModelName] = promptGuard
	}
	return &healthHandler{models: models}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	readiness := make(map[string]bool, len(h.models))
	allReady := true
	for name, model := range h.models {
		ready := model.Ready()
		readiness[name] = ready
		if !ready {
			allReady = false
		}
	}

	status := "ok"
	if !allReady {
		status = "degraded"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": status,
		"models": readiness,
	})
}
