package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

// ErrDuplicateFingerprint reports that a communication event with the same
// content fingerprint was already processed. The UNIQUE constraint on the
// fingerprint column is the serialization point for deduplication, so two
// concurrent identical samples cannot both get through.
var ErrDuplicateFingerprint = errors.New("communication event with this fingerprint already exists")

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS communication_events (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		source_id TEXT,
		event_type TEXT,
		fingerprint TEXT NOT NULL UNIQUE,
		anonymized_content TEXT NOT NULL,
		metadata TEXT,
		occurred_at INTEGER NOT NULL,
		processed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_org ON communication_events(organization_id, unit_id);
	CREATE INDEX IF NOT EXISTS idx_events_occurred ON communication_events(occurred_at);

	CREATE TABLE IF NOT EXISTS linguistic_analyses (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		analysis_type TEXT NOT NULL,
		metrics TEXT NOT NULL,
		baseline_metrics TEXT,
		variance_score REAL NOT NULL,
		confidence_level REAL NOT NULL,
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_org ON linguistic_analyses(organization_id, unit_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON linguistic_analyses(created_at);

	CREATE TABLE IF NOT EXISTS symbolic_baselines (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		baseline_type TEXT NOT NULL DEFAULT 'comprehensive',
		baseline_data TEXT NOT NULL,
		window_days INTEGER NOT NULL DEFAULT 30,
		last_updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_baselines_org ON symbolic_baselines(organization_id, unit_id, last_updated);

	CREATE TABLE IF NOT EXISTS organization_missions (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		statement TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(organization_id, unit_id)
	);

	CREATE TABLE IF NOT EXISTS symbolic_alerts (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		interpretive_analysis TEXT,
		recommended_actions TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		created_at INTEGER NOT NULL,
		resolved_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_org ON symbolic_alerts(organization_id, unit_id, status);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON symbolic_alerts(created_at);

	CREATE TABLE IF NOT EXISTS stabilization_interventions (
		id TEXT PRIMARY KEY,
		alert_id TEXT NOT NULL,
		intervention_type TEXT NOT NULL,
		content TEXT NOT NULL,
		implementation_status TEXT NOT NULL DEFAULT 'suggested',
		effectiveness_score REAL,
		created_at INTEGER NOT NULL,
		implemented_at INTEGER,
		FOREIGN KEY (alert_id) REFERENCES symbolic_alerts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_interventions_alert ON stabilization_interventions(alert_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertCommunicationEvent persists one ingested sample. It returns
// ErrDuplicateFingerprint when the fingerprint was seen before.
func (c *Client) InsertCommunicationEvent(ctx context.Context, event *models.CommunicationEvent) error {
	query := `
		INSERT INTO communication_events (id, organization_id, unit_id, source_id, event_type,
			fingerprint, anonymized_content, metadata, occurred_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.OrganizationID,
		event.UnitID,
		event.SourceID,
		event.EventType,
		event.Fingerprint,
		event.AnonymizedContent,
		event.Metadata,
		event.OccurredAt.Unix(),
		event.ProcessedAt.Unix(),
	)

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateFingerprint
		}
		return fmt.Errorf("failed to insert communication event: %w", err)
	}

	logger.Debug("Communication event stored",
		zap.String("event_id", event.ID),
		zap.String("fingerprint", event.Fingerprint),
	)
	return nil
}

func (c *Client) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO linguistic_analyses (id, organization_id, unit_id, analysis_type, metrics,
			baseline_metrics, variance_score, confidence_level, window_start, window_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.OrganizationID,
		record.UnitID,
		record.AnalysisType,
		record.Metrics,
		record.BaselineMetrics,
		record.VarianceScore,
		record.ConfidenceLevel,
		record.WindowStart.Unix(),
		record.WindowEnd.Unix(),
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	logger.Info("Analysis recorded",
		zap.String("analysis_id", record.ID),
		zap.String("organization_id", record.OrganizationID),
		zap.Float64("variance_score", record.VarianceScore),
		zap.Float64("confidence", record.ConfidenceLevel),
	)
	return nil
}

// GetLatestBaseline returns the newest baseline for the organization/unit, or
// (nil, nil) when none exists; a missing baseline is not an error.
func (c *Client) GetLatestBaseline(ctx context.Context, organizationID, unitID string) (*models.BaselineRecord, error) {
	query := `
		SELECT id, organization_id, unit_id, baseline_type, baseline_data, window_days, last_updated
		FROM symbolic_baselines
		WHERE organization_id = ? AND unit_id = ? AND baseline_type = 'comprehensive'
		ORDER BY last_updated DESC
		LIMIT 1
	`

	var record models.BaselineRecord
	var lastUpdated int64

	err := c.db.QueryRowContext(ctx, query, organizationID, unitID).Scan(
		&record.ID,
		&record.OrganizationID,
		&record.UnitID,
		&record.BaselineType,
		&record.Data,
		&record.WindowDays,
		&lastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline: %w", err)
	}

	record.LastUpdated = time.Unix(lastUpdated, 0)
	return &record, nil
}

// UpsertBaseline writes a baseline row. The engine never calls this; it
// exists for the external baseline-maintenance process and for tests.
func (c *Client) UpsertBaseline(ctx context.Context, record *models.BaselineRecord) error {
	query := `
		INSERT INTO symbolic_baselines (id, organization_id, unit_id, baseline_type, baseline_data, window_days, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			baseline_data = excluded.baseline_data,
			window_days = excluded.window_days,
			last_updated = excluded.last_updated
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.OrganizationID,
		record.UnitID,
		record.BaselineType,
		record.Data,
		record.WindowDays,
		record.LastUpdated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert baseline: %w", err)
	}
	return nil
}

func (c *Client) GetMission(ctx context.Context, organizationID, unitID string) (*models.MissionRecord, error) {
	query := `
		SELECT id, organization_id, unit_id, statement, updated_at
		FROM organization_missions
		WHERE organization_id = ? AND unit_id = ?
	`

	var record models.MissionRecord
	var updatedAt int64

	err := c.db.QueryRowContext(ctx, query, organizationID, unitID).Scan(
		&record.ID,
		&record.OrganizationID,
		&record.UnitID,
		&record.Statement,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}

	record.UpdatedAt = time.Unix(updatedAt, 0)
	return &record, nil
}

func (c *Client) UpsertMission(ctx context.Context, record *models.MissionRecord) error {
	query := `
		INSERT INTO organization_missions (id, organization_id, unit_id, statement, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(organization_id, unit_id) DO UPDATE SET
			statement = excluded.statement,
			updated_at = excluded.updated_at
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.OrganizationID,
		record.UnitID,
		record.Statement,
		record.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mission: %w", err)
	}

	logger.Info("Mission statement updated",
		zap.String("organization_id", record.OrganizationID),
		zap.String("unit_id", record.UnitID),
	)
	return nil
}

func (c *Client) InsertAlert(ctx context.Context, record *models.AlertRecord) error {
	query := `
		INSERT INTO symbolic_alerts (id, organization_id, unit_id, alert_type, severity, title,
			description, interpretive_analysis, recommended_actions, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.OrganizationID,
		record.UnitID,
		record.AlertType,
		record.Severity,
		record.Title,
		record.Description,
		record.InterpretiveAnalysis,
		record.RecommendedActions,
		record.Status,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	logger.Info("Alert opened",
		zap.String("alert_id", record.ID),
		zap.String("type", record.AlertType),
		zap.String("severity", record.Severity),
	)
	return nil
}

func (c *Client) GetAlert(ctx context.Context, id string) (*models.AlertRecord, error) {
	query := `
		SELECT id, organization_id, unit_id, alert_type, severity, title, description,
			interpretive_analysis, recommended_actions, status, created_at, resolved_at
		FROM symbolic_alerts
		WHERE id = ?
	`

	var record models.AlertRecord
	var createdAt int64
	var resolvedAt sql.NullInt64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.OrganizationID,
		&record.UnitID,
		&record.AlertType,
		&record.Severity,
		&record.Title,
		&record.Description,
		&record.InterpretiveAnalysis,
		&record.RecommendedActions,
		&record.Status,
		&createdAt,
		&resolvedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	record.CreatedAt = time.Unix(createdAt, 0)
	if resolvedAt.Valid {
		t := time.Unix(resolvedAt.Int64, 0)
		record.ResolvedAt = &t
	}
	return &record, nil
}

func (c *Client) ListOpenAlerts(ctx context.Context, organizationID, unitID string, limit int) ([]models.AlertRecord, error) {
	query := `
		SELECT id, organization_id, unit_id, alert_type, severity, title, description,
			interpretive_analysis, recommended_actions, status, created_at
		FROM symbolic_alerts
		WHERE organization_id = ? AND unit_id = ? AND status = 'open'
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, organizationID, unitID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var records []models.AlertRecord
	for rows.Next() {
		var r models.AlertRecord
		var createdAt int64

		err := rows.Scan(
			&r.ID,
			&r.OrganizationID,
			&r.UnitID,
			&r.AlertType,
			&r.Severity,
			&r.Title,
			&r.Description,
			&r.InterpretiveAnalysis,
			&r.RecommendedActions,
			&r.Status,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) ResolveAlert(ctx context.Context, id string) error {
	query := `UPDATE symbolic_alerts SET status = 'resolved', resolved_at = ? WHERE id = ? AND status = 'open'`

	result, err := c.db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.Info("Alert resolved", zap.String("alert_id", id))
	return nil
}

func (c *Client) InsertIntervention(ctx context.Context, record *models.InterventionRecord) error {
	query := `
		INSERT INTO stabilization_interventions (id, alert_id, intervention_type, content,
			implementation_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.AlertID,
		record.InterventionType,
		record.Content,
		record.ImplementationStatus,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert intervention: %w", err)
	}
	return nil
}

func (c *Client) GetIntervention(ctx context.Context, id string) (*models.InterventionRecord, error) {
	query := `
		SELECT id, alert_id, intervention_type, content, implementation_status,
			effectiveness_score, created_at, implemented_at
		FROM stabilization_interventions
		WHERE id = ?
	`

	var record models.InterventionRecord
	var score sql.NullFloat64
	var createdAt int64
	var implementedAt sql.NullInt64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.AlertID,
		&record.InterventionType,
		&record.Content,
		&record.ImplementationStatus,
		&score,
		&createdAt,
		&implementedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intervention: %w", err)
	}

	if score.Valid {
		record.EffectivenessScore = &score.Float64
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	if implementedAt.Valid {
		t := time.Unix(implementedAt.Int64, 0)
		record.ImplementedAt = &t
	}
	return &record, nil
}

func (c *Client) ListInterventions(ctx context.Context, alertID string) ([]models.InterventionRecord, error) {
	query := `
		SELECT id, alert_id, intervention_type, content, implementation_status,
			effectiveness_score, created_at
		FROM stabilization_interventions
		WHERE alert_id = ?
		ORDER BY created_at ASC
	`

	rows, err := c.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}
	defer rows.Close()

	var records []models.InterventionRecord
	for rows.Next() {
		var r models.InterventionRecord
		var score sql.NullFloat64
		var createdAt int64

		err := rows.Scan(
			&r.ID,
			&r.AlertID,
			&r.InterventionType,
			&r.Content,
			&r.ImplementationStatus,
			&score,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if score.Valid {
			r.EffectivenessScore = &score.Float64
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) MarkInterventionImplemented(ctx context.Context, id string) error {
	query := `
		UPDATE stabilization_interventions
		SET implementation_status = 'implemented', implemented_at = ?
		WHERE id = ? AND implementation_status = 'suggested'
	`

	result, err := c.db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark intervention implemented: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark intervention implemented: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.Info("Intervention implemented", zap.String("intervention_id", id))
	return nil
}

func (c *Client) CompleteIntervention(ctx context.Context, id string, effectivenessScore float64) error {
	query := `
		UPDATE stabilization_interventions
		SET implementation_status = 'completed', effectiveness_score = ?
		WHERE id = ?
	`

	result, err := c.db.ExecContext(ctx, query, effectivenessScore, id)
	if err != nil {
		return fmt.Errorf("failed to complete intervention: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete intervention: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.Info("Intervention completed",
		zap.String("intervention_id", id),
		zap.Float64("effectiveness_score", effectivenessScore),
	)
	return nil
}
