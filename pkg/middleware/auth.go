package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/app/apikey"
	"github.com/triage-ai/triage-guard/pkg/common"
)

type authMiddleware struct {
	logger    *logrus.Logger
	keyFinder apikey.Finder
}

func NewAuthMiddleware(logger *logrus.Logger, keyFinder apikey.Finder) Middleware {
	return &authMiddleware{
		logger:    logger,
		keyFinder: keyFinder,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		providedKey := ctx.Get(common.ApiKeyHeader)
		if providedKey == "" {
			m.logger.Debug("no api key provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "API key required"})
		}

		key, err := m.keyFinder.Find(ctx.Context(), providedKey)
		if err != nil {
			m.logger.WithError(err).Debug("error retrieving apikey")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
		}

		if !key.IsValid() {
			m.logger.Debug("inactive or expired API key")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
		}

		ctx.Locals(common.ApiKeyContextKey, providedKey)
		ctx.Locals(common.ApiKeyIdContextKey, key.ID.String())
		ctx.Locals(common.LatencyContextKey, time.Now())

		c := context.WithValue(ctx.Context(), common.ApiKeyContextKey, providedKey)
		c = context.WithValue(c, common.ApiKeyIdContextKey, key.ID.String())
		ctx.SetUserContext(c)

		return ctx.Next()
	}
}
