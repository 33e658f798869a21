// Package validation rejects malformed analysis and ingestion requests
// before they reach the engine. It enforces the required fields and the
// configured text ceiling; semantic validation stays in the engine.
package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxTextLength int
	Logger        *zap.Logger
}

// Middleware validates bodies on the text-bearing routes. Other routes pass
// through untouched.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 100000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		path := c.Path()
		isAnalyze := strings.HasSuffix(path, "/analyze")
		isIngest := strings.HasSuffix(path, "/communications")
		if !isAnalyze && !isIngest {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		textField := "text"
		if isIngest {
			textField = "content"
		}

		text, ok := req[textField].(string)
		if !ok || strings.TrimSpace(text) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": textField + " is required and must be a string",
			})
		}

		if len(text) > cfg.MaxTextLength {
			cfg.Logger.Warn("Oversized request body rejected",
				zap.String("path", path),
				zap.Int("length", len(text)),
			)
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Text exceeds maximum length",
			})
		}

		orgID, ok := req["organization_id"].(string)
		if !ok || orgID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "organization_id is required and must be a string",
			})
		}

		return c.Next()
	}
}
