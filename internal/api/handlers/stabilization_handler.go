package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/alerts"
	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
	"github.com/topherchris420/signal-forge-pulse/internal/metrics"
	"github.com/topherchris420/signal-forge-pulse/internal/stabilization"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

type StabilizationHandler struct {
	db *sqlite.Client
}

func NewStabilizationHandler(db *sqlite.Client) *StabilizationHandler {
	return &StabilizationHandler{
		db: db,
	}
}

// HandleGeneratePackage builds the intervention bundle for an alert and
// persists each prompt, ritual, and reframing strategy as a suggested
// intervention tied to that alert.
func (h *StabilizationHandler) HandleGeneratePackage(c *fiber.Ctx) error {
	alertID := c.Params("alert_id")

	alert, err := h.db.GetAlert(c.Context(), alertID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Alert not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load alert", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load alert",
		})
	}

	var actions alerts.RecommendedActions
	if err := json.Unmarshal([]byte(alert.RecommendedActions), &actions); err != nil {
		logger.Warn("Alert actions malformed, generating without indicators",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
	}

	pkg := stabilization.GeneratePackage(actions.DriftIndicators, analysis.Severity(alert.Severity))

	type storedIntervention struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	var stored []storedIntervention

	persist := func(interventionType string, content interface{}) {
		data, err := json.Marshal(content)
		if err != nil {
			logger.Error("Failed to marshal intervention content", zap.Error(err))
			return
		}

		record := &models.InterventionRecord{
			ID:                   uuid.NewString(),
			AlertID:              alertID,
			InterventionType:     interventionType,
			Content:              string(data),
			ImplementationStatus: stabilization.StatusSuggested,
			CreatedAt:            time.Now().UTC(),
		}
		if err := h.db.InsertIntervention(c.Context(), record); err != nil {
			logger.Error("Failed to persist intervention",
				zap.String("alert_id", alertID),
				zap.String("type", interventionType),
				zap.Error(err),
			)
			return
		}

		metrics.InterventionsGenerated.WithLabelValues(interventionType).Inc()
		stored = append(stored, storedIntervention{ID: record.ID, Type: interventionType})
	}

	for _, prompt := range pkg.RepairPrompts {
		persist(stabilization.TypePrompt, prompt)
	}
	for _, ritual := range pkg.AlignmentRituals {
		persist(stabilization.TypeRitual, ritual)
	}
	for _, strategy := range pkg.ReframingStrategies {
		persist(stabilization.TypeReframing, strategy)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"alert_id":      alertID,
		"package":       pkg,
		"interventions": stored,
	})
}

type interventionResponse struct {
	ID                   string          `json:"id"`
	AlertID              string          `json:"alert_id"`
	InterventionType     string          `json:"intervention_type"`
	Content              json.RawMessage `json:"content"`
	ImplementationStatus string          `json:"implementation_status"`
	EffectivenessScore   *float64        `json:"effectiveness_score,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (h *StabilizationHandler) HandleListInterventions(c *fiber.Ctx) error {
	alertID := c.Params("alert_id")

	records, err := h.db.ListInterventions(c.Context(), alertID)
	if err != nil {
		logger.Error("Failed to list interventions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list interventions",
		})
	}

	interventions := make([]interventionResponse, 0, len(records))
	for _, r := range records {
		content := json.RawMessage(r.Content)
		if !json.Valid(content) {
			// A corrupt row degrades to a placeholder rather than failing the
			// whole listing.
			content = json.RawMessage(`"content unavailable"`)
		}
		interventions = append(interventions, interventionResponse{
			ID:                   r.ID,
			AlertID:              r.AlertID,
			InterventionType:     r.InterventionType,
			Content:              content,
			ImplementationStatus: r.ImplementationStatus,
			EffectivenessScore:   r.EffectivenessScore,
			CreatedAt:            r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"interventions": interventions,
		"count":         len(interventions),
	})
}

func (h *StabilizationHandler) HandleMarkImplemented(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.db.MarkInterventionImplemented(c.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Intervention not found or not in suggested state",
		})
	}
	if err != nil {
		logger.Error("Failed to mark intervention implemented", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update intervention",
		})
	}

	return c.JSON(fiber.Map{
		"id":     id,
		"status": stabilization.StatusImplemented,
	})
}

// HandleEffectiveness compares before/after metric snapshots, completes the
// intervention with the resulting score, and returns the assessment.
func (h *StabilizationHandler) HandleEffectiveness(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Before stabilization.MetricSnapshot `json:"before"`
		After  stabilization.MetricSnapshot `json:"after"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.db.GetIntervention(c.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Intervention not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load intervention", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load intervention",
		})
	}

	if record.ImplementationStatus != stabilization.StatusImplemented {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Intervention must be implemented before assessment",
		})
	}

	assessment := stabilization.AssessEffectiveness(req.Before, req.After)

	err = h.db.CompleteIntervention(c.Context(), id, assessment.EffectivenessScore)
	if err != nil {
		logger.Error("Failed to complete intervention", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete intervention",
		})
	}

	return c.JSON(fiber.Map{
		"id":         id,
		"status":     stabilization.StatusCompleted,
		"assessment": assessment,
	})
}
