package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

type AlertsHandler struct {
	db *sqlite.Client
}

func NewAlertsHandler(db *sqlite.Client) *AlertsHandler {
	return &AlertsHandler{
		db: db,
	}
}

type alertResponse struct {
	ID                   string          `json:"id"`
	OrganizationID       string          `json:"organization_id"`
	UnitID               string          `json:"unit_id,omitempty"`
	AlertType            string          `json:"alert_type"`
	Severity             string          `json:"severity"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	InterpretiveAnalysis string          `json:"interpretive_analysis"`
	RecommendedActions   json.RawMessage `json:"recommended_actions"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (h *AlertsHandler) HandleListOpen(c *fiber.Ctx) error {
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "organization_id is required",
		})
	}
	unitID := c.Query("unit_id")
	limit := c.QueryInt("limit", 50)

	records, err := h.db.ListOpenAlerts(c.Context(), organizationID, unitID, limit)
	if err != nil {
		logger.Error("Failed to list alerts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list alerts",
		})
	}

	alerts := make([]alertResponse, 0, len(records))
	for _, r := range records {
		actions := json.RawMessage(r.RecommendedActions)
		if !json.Valid(actions) {
			actions = json.RawMessage("null")
		}
		alerts = append(alerts, alertResponse{
			ID:                   r.ID,
			OrganizationID:       r.OrganizationID,
			UnitID:               r.UnitID,
			AlertType:            r.AlertType,
			Severity:             r.Severity,
			Title:                r.Title,
			Description:          r.Description,
			InterpretiveAnalysis: r.InterpretiveAnalysis,
			RecommendedActions:   actions,
			Status:               r.Status,
			CreatedAt:            r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (h *AlertsHandler) HandleResolve(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.db.ResolveAlert(c.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Alert not found or already resolved",
		})
	}
	if err != nil {
		logger.Error("Failed to resolve alert", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve alert",
		})
	}

	return c.JSON(fiber.Map{
		"id":     id,
		"status": "resolved",
	})
}
