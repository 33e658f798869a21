// Package engine orchestrates one analysis invocation: anonymize, extract
// features, detect drift against the stored baseline, score mission
// resonance, apply alert rules, and persist the outcome. Each invocation is
// a stateless request/response computation with one external read (the
// latest baseline) and write-behind persistence.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/alerts"
	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
	"github.com/topherchris420/signal-forge-pulse/internal/metrics"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/pkg/circuitbreaker"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
	"github.com/topherchris420/signal-forge-pulse/pkg/retry"
)

// Analysis type selectors.
const (
	TypeFull      = "full"
	TypeCoherence = "coherence"
	TypeEntropy   = "entropy"
	TypeDrift     = "drift"
	TypeResonance = "resonance"
)

// Sub-results without their own confidence contribute this default to the
// overall maximum.
const defaultSubConfidence = 0.5

var (
	ErrMissingText         = errors.New("text is required")
	ErrMissingOrganization = errors.New("organization id is required")
	ErrUnknownAnalysisType = errors.New("unknown analysis type")
)

// Store is the persistence surface the engine depends on.
type Store interface {
	GetLatestBaseline(ctx context.Context, organizationID, unitID string) (*models.BaselineRecord, error)
	GetMission(ctx context.Context, organizationID, unitID string) (*models.MissionRecord, error)
	InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	InsertAlert(ctx context.Context, record *models.AlertRecord) error
}

// Cache fronts baseline and mission reads; all methods may fail without
// affecting the invocation.
type Cache interface {
	GetBaseline(ctx context.Context, organizationID, unitID string) (*analysis.BaselineMetrics, bool, error)
	SetBaseline(ctx context.Context, organizationID, unitID string, baseline *analysis.BaselineMetrics, ttl time.Duration) error
	GetMission(ctx context.Context, organizationID, unitID string) (string, bool, error)
	SetMission(ctx context.Context, organizationID, unitID, statement string, ttl time.Duration) error
}

// Notifier receives alerts as they open, e.g. the websocket stream hub.
type Notifier interface {
	NotifyAlert(event AlertEvent)
}

// Request is one analysis invocation.
type Request struct {
	Text             string
	OrganizationID   string
	UnitID           string
	MissionStatement string
	AnalysisType     string
}

// AlertEvent is a persisted alert with identity, as published to consumers.
type AlertEvent struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	UnitID         string       `json:"unit_id,omitempty"`
	Alert          alerts.Alert `json:"alert"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Result is the invocation output bundle. Only the requested sub-results are
// populated. Confidence is the maximum of the sub-confidences.
type Result struct {
	AnalysisID string                      `json:"analysis_id"`
	Coherence  *analysis.CoherenceFeatures `json:"coherence,omitempty"`
	Entropy    *analysis.EntropyFeatures   `json:"entropy,omitempty"`
	Drift      *analysis.DriftResult       `json:"drift,omitempty"`
	Resonance  *analysis.ResonanceResult   `json:"resonance,omitempty"`
	Confidence float64                     `json:"confidence"`
	Alerts     []AlertEvent                `json:"-"`
}

// Options configures an Engine.
type Options struct {
	Cache        Cache
	CacheBreaker *circuitbreaker.CircuitBreaker
	Notifier     Notifier
	BaselineTTL  time.Duration
	MissionTTL   time.Duration
	Retry        retry.Config
}

type Engine struct {
	store        Store
	cache        Cache
	cacheBreaker *circuitbreaker.CircuitBreaker
	rules        *alerts.RuleEngine
	notifier     Notifier
	baselineTTL  time.Duration
	missionTTL   time.Duration
	retryCfg     retry.Config
}

func NewEngine(store Store, opts Options) *Engine {
	if opts.BaselineTTL == 0 {
		opts.BaselineTTL = 5 * time.Minute
	}
	if opts.MissionTTL == 0 {
		opts.MissionTTL = 10 * time.Minute
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	return &Engine{
		store:        store,
		cache:        opts.Cache,
		cacheBreaker: opts.CacheBreaker,
		rules:        alerts.NewRuleEngine(),
		notifier:     opts.Notifier,
		baselineTTL:  opts.BaselineTTL,
		missionTTL:   opts.MissionTTL,
		retryCfg:     opts.Retry,
	}
}

// Analyze runs one invocation. Validation failures fail the whole call;
// missing baseline or mission are neutral defaults; persistence failures are
// logged and the computed result is still returned.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = TypeFull
	}
	if err := validate(req, analysisType); err != nil {
		return nil, err
	}

	anonymized := analysis.Anonymize(req.Text)

	result := &Result{AnalysisID: uuid.NewString()}

	features := analysis.FeatureSet{
		Coherence: analysis.AnalyzeCoherence(anonymized),
		Entropy:   analysis.AnalyzeEntropy(anonymized),
	}

	if analysisType == TypeFull || analysisType == TypeCoherence {
		c := features.Coherence
		result.Coherence = &c
	}
	if analysisType == TypeFull || analysisType == TypeEntropy {
		en := features.Entropy
		result.Entropy = &en
	}

	var baselineJSON string
	if analysisType == TypeFull || analysisType == TypeDrift {
		baseline := e.lookupBaseline(ctx, req.OrganizationID, req.UnitID)
		if baseline != nil {
			if data, err := json.Marshal(baseline); err == nil {
				baselineJSON = string(data)
			}
		}
		drift := analysis.DetectDrift(features, baseline)
		result.Drift = &drift
	}

	if analysisType == TypeFull || analysisType == TypeResonance {
		mission := req.MissionStatement
		if mission == "" {
			mission = e.lookupMission(ctx, req.OrganizationID, req.UnitID)
		}
		resonance := analysis.ScoreResonance(anonymized, mission)
		result.Resonance = &resonance
	}

	result.Confidence = overallConfidence(result)

	e.persistAnalysis(ctx, req, analysisType, baselineJSON, result)
	result.Alerts = e.openAlerts(ctx, req, result)

	metrics.AnalysesTotal.WithLabelValues(analysisType).Inc()
	metrics.AnalysisDuration.WithLabelValues(analysisType).Observe(time.Since(start).Seconds())
	if result.Drift != nil {
		metrics.DriftScore.Observe(result.Drift.Score)
	}
	if result.Resonance != nil {
		metrics.ResonanceScore.Observe(result.Resonance.Score)
	}

	return result, nil
}

func validate(req Request, analysisType string) error {
	if req.Text == "" {
		return ErrMissingText
	}
	if req.OrganizationID == "" {
		return ErrMissingOrganization
	}
	switch analysisType {
	case TypeFull, TypeCoherence, TypeEntropy, TypeDrift, TypeResonance:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAnalysisType, analysisType)
	}
}

// lookupBaseline reads through the cache when available; cache failures trip
// the breaker and degrade to a direct store read. A missing baseline is nil.
func (e *Engine) lookupBaseline(ctx context.Context, organizationID, unitID string) *analysis.BaselineMetrics {
	if e.cache != nil {
		var cached *analysis.BaselineMetrics
		var hit bool
		err := e.executeCached(ctx, func() error {
			var err error
			cached, hit, err = e.cache.GetBaseline(ctx, organizationID, unitID)
			return err
		})
		if err == nil && hit {
			metrics.CacheHits.WithLabelValues("baseline").Inc()
			return cached
		}
		if err != nil {
			logger.Warn("Baseline cache read failed", zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues("baseline").Inc()
	}

	record, err := e.store.GetLatestBaseline(ctx, organizationID, unitID)
	if err != nil {
		logger.Warn("Baseline lookup failed",
			zap.String("organization_id", organizationID),
			zap.Error(err),
		)
		return nil
	}
	if record == nil {
		return nil
	}

	var baseline analysis.BaselineMetrics
	if err := json.Unmarshal([]byte(record.Data), &baseline); err != nil {
		logger.Warn("Baseline data malformed, treating as absent",
			zap.String("baseline_id", record.ID),
			zap.Error(err),
		)
		return nil
	}

	if e.cache != nil {
		if err := e.executeCached(ctx, func() error {
			return e.cache.SetBaseline(ctx, organizationID, unitID, &baseline, e.baselineTTL)
		}); err != nil {
			logger.Debug("Baseline cache fill failed", zap.Error(err))
		}
	}

	return &baseline
}

func (e *Engine) lookupMission(ctx context.Context, organizationID, unitID string) string {
	if e.cache != nil {
		var cached string
		var hit bool
		err := e.executeCached(ctx, func() error {
			var err error
			cached, hit, err = e.cache.GetMission(ctx, organizationID, unitID)
			return err
		})
		if err == nil && hit {
			metrics.CacheHits.WithLabelValues("mission").Inc()
			return cached
		}
		metrics.CacheMisses.WithLabelValues("mission").Inc()
	}

	record, err := e.store.GetMission(ctx, organizationID, unitID)
	if err != nil {
		logger.Warn("Mission lookup failed",
			zap.String("organization_id", organizationID),
			zap.Error(err),
		)
		return ""
	}
	if record == nil {
		return ""
	}

	if e.cache != nil {
		if err := e.executeCached(ctx, func() error {
			return e.cache.SetMission(ctx, organizationID, unitID, record.Statement, e.missionTTL)
		}); err != nil {
			logger.Debug("Mission cache fill failed", zap.Error(err))
		}
	}

	return record.Statement
}

func (e *Engine) executeCached(ctx context.Context, fn func() error) error {
	if e.cacheBreaker == nil {
		return fn()
	}
	return e.cacheBreaker.Execute(ctx, fn)
}

// persistAnalysis writes the immutable analysis record. Failures are logged
// and never fail the invocation; the scores matter more than durability here.
func (e *Engine) persistAnalysis(ctx context.Context, req Request, analysisType, baselineJSON string, result *Result) {
	metricsJSON, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal analysis metrics", zap.Error(err))
		return
	}

	variance := 0.0
	if result.Drift != nil {
		variance = result.Drift.Score
	}

	now := time.Now().UTC()
	record := &models.AnalysisRecord{
		ID:              result.AnalysisID,
		OrganizationID:  req.OrganizationID,
		UnitID:          req.UnitID,
		AnalysisType:    analysisType,
		Metrics:         string(metricsJSON),
		BaselineMetrics: baselineJSON,
		VarianceScore:   variance,
		ConfidenceLevel: result.Confidence,
		WindowStart:     now,
		WindowEnd:       now,
		CreatedAt:       now,
	}

	err = retry.Do(ctx, e.retryCfg, func() error {
		return e.store.InsertAnalysis(ctx, record)
	})
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("analysis").Inc()
		logger.Error("Failed to persist analysis, returning result anyway",
			zap.String("analysis_id", record.ID),
			zap.Error(err),
		)
	}
}

func (e *Engine) openAlerts(ctx context.Context, req Request, result *Result) []AlertEvent {
	fired := e.rules.Evaluate(result.Drift, result.Resonance)
	if len(fired) == 0 {
		return nil
	}

	events := make([]AlertEvent, 0, len(fired))
	for _, alert := range fired {
		actionsJSON, err := json.Marshal(alert.RecommendedActions)
		if err != nil {
			logger.Error("Failed to marshal alert actions", zap.Error(err))
			continue
		}

		record := &models.AlertRecord{
			ID:                   uuid.NewString(),
			OrganizationID:       req.OrganizationID,
			UnitID:               req.UnitID,
			AlertType:            alert.Type,
			Severity:             string(alert.Severity),
			Title:                alert.Title,
			Description:          alert.Description,
			InterpretiveAnalysis: alert.InterpretiveAnalysis,
			RecommendedActions:   string(actionsJSON),
			Status:               alerts.StatusOpen,
			CreatedAt:            time.Now().UTC(),
		}

		err = retry.Do(ctx, e.retryCfg, func() error {
			return e.store.InsertAlert(ctx, record)
		})
		if err != nil {
			metrics.PersistenceFailures.WithLabelValues("alert").Inc()
			logger.Error("Failed to persist alert",
				zap.String("alert_type", alert.Type),
				zap.Error(err),
			)
			continue
		}

		metrics.AlertsOpened.WithLabelValues(alert.Type, string(alert.Severity)).Inc()

		event := AlertEvent{
			ID:             record.ID,
			OrganizationID: req.OrganizationID,
			UnitID:         req.UnitID,
			Alert:          alert,
			CreatedAt:      record.CreatedAt,
		}
		events = append(events, event)

		if e.notifier != nil {
			e.notifier.NotifyAlert(event)
		}
	}

	return events
}

func overallConfidence(result *Result) float64 {
	confidence := 0.0
	if result.Coherence != nil {
		confidence = defaultSubConfidence
	}
	if result.Entropy != nil && defaultSubConfidence > confidence {
		confidence = defaultSubConfidence
	}
	if result.Drift != nil && result.Drift.Confidence > confidence {
		confidence = result.Drift.Confidence
	}
	if result.Resonance != nil && result.Resonance.Confidence > confidence {
		confidence = result.Resonance.Confidence
	}
	return confidence
}
