package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/cache/redis"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

type MissionsHandler struct {
	db    *sqlite.Client
	cache *redis.Client
}

// NewMissionsHandler accepts a nil cache when Redis is disabled.
func NewMissionsHandler(db *sqlite.Client, cache *redis.Client) *MissionsHandler {
	return &MissionsHandler{
		db:    db,
		cache: cache,
	}
}

func (h *MissionsHandler) HandleUpsert(c *fiber.Ctx) error {
	var req struct {
		OrganizationID string `json:"organization_id"`
		UnitID         string `json:"unit_id"`
		Statement      string `json:"statement"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.OrganizationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "organization_id is required",
		})
	}
	if req.Statement == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "statement is required",
		})
	}

	record := &models.MissionRecord{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		UnitID:         req.UnitID,
		Statement:      req.Statement,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := h.db.UpsertMission(c.Context(), record); err != nil {
		logger.Error("Failed to upsert mission", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save mission statement",
		})
	}

	if h.cache != nil {
		if err := h.cache.InvalidateMission(c.Context(), req.OrganizationID, req.UnitID); err != nil {
			logger.Warn("Failed to invalidate mission cache", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"organization_id": req.OrganizationID,
		"unit_id":         req.UnitID,
		"updated_at":      record.UpdatedAt,
	})
}
