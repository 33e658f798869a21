package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/engine"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

type AnalyzeHandler struct {
	engine *engine.Engine
}

func NewAnalyzeHandler(eng *engine.Engine) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine: eng,
	}
}

func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req struct {
		Text             string `json:"text"`
		OrganizationID   string `json:"organization_id"`
		UnitID           string `json:"unit_id"`
		MissionStatement string `json:"mission_statement"`
		AnalysisType     string `json:"analysis_type"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.engine.Analyze(c.Context(), engine.Request{
		Text:             req.Text,
		OrganizationID:   req.OrganizationID,
		UnitID:           req.UnitID,
		MissionStatement: req.MissionStatement,
		AnalysisType:     req.AnalysisType,
	})
	if err != nil {
		if errors.Is(err, engine.ErrMissingText) ||
			errors.Is(err, engine.ErrMissingOrganization) ||
			errors.Is(err, engine.ErrUnknownAnalysisType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Failed to run analysis", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run analysis",
		})
	}

	return c.JSON(fiber.Map{
		"analysis":      result,
		"alerts":        result.Alerts,
		"alerts_opened": len(result.Alerts),
	})
}
