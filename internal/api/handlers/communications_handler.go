package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/ingestion"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

type CommunicationsHandler struct {
	processor *ingestion.Processor
}

func NewCommunicationsHandler(processor *ingestion.Processor) *CommunicationsHandler {
	return &CommunicationsHandler{
		processor: processor,
	}
}

func (h *CommunicationsHandler) HandleIngest(c *fiber.Ctx) error {
	var req struct {
		Content        string            `json:"content"`
		ContentType    string            `json:"content_type"`
		OrganizationID string            `json:"organization_id"`
		UnitID         string            `json:"unit_id"`
		SourceID       string            `json:"source_id"`
		EventType      string            `json:"event_type"`
		Metadata       map[string]string `json:"metadata"`
		OccurredAt     time.Time         `json:"occurred_at"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	outcome, err := h.processor.Process(c.Context(), ingestion.Sample{
		Content:        req.Content,
		ContentType:    req.ContentType,
		OrganizationID: req.OrganizationID,
		UnitID:         req.UnitID,
		SourceID:       req.SourceID,
		EventType:      req.EventType,
		Metadata:       req.Metadata,
		OccurredAt:     req.OccurredAt,
	})
	if err != nil {
		if errors.Is(err, ingestion.ErrContentTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Failed to process communication", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process communication",
		})
	}

	if outcome.Duplicate {
		return c.JSON(fiber.Map{
			"duplicate": true,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(outcome)
}
