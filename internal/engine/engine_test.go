package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topherchris420/signal-forge-pulse/internal/alerts"
	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
	"github.com/topherchris420/signal-forge-pulse/pkg/retry"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeStore struct {
	baselineData string
	mission      string
	analyses     []*models.AnalysisRecord
	alertRecords []*models.AlertRecord
	analysisErr  error
	alertErr     error
}

func (s *fakeStore) GetLatestBaseline(ctx context.Context, organizationID, unitID string) (*models.BaselineRecord, error) {
	if s.baselineData == "" {
		return nil, nil
	}
	return &models.BaselineRecord{
		ID:             "baseline-1",
		OrganizationID: organizationID,
		UnitID:         unitID,
		Data:           s.baselineData,
	}, nil
}

func (s *fakeStore) GetMission(ctx context.Context, organizationID, unitID string) (*models.MissionRecord, error) {
	if s.mission == "" {
		return nil, nil
	}
	return &models.MissionRecord{
		ID:             "mission-1",
		OrganizationID: organizationID,
		UnitID:         unitID,
		Statement:      s.mission,
	}, nil
}

func (s *fakeStore) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if s.analysisErr != nil {
		return s.analysisErr
	}
	s.analyses = append(s.analyses, record)
	return nil
}

func (s *fakeStore) InsertAlert(ctx context.Context, record *models.AlertRecord) error {
	if s.alertErr != nil {
		return s.alertErr
	}
	s.alertRecords = append(s.alertRecords, record)
	return nil
}

type fakeNotifier struct {
	events []AlertEvent
}

func (n *fakeNotifier) NotifyAlert(event AlertEvent) {
	n.events = append(n.events, event)
}

func newTestEngine(store Store, notifier Notifier) *Engine {
	return NewEngine(store, Options{
		Notifier: notifier,
		Retry:    retry.Config{MaxAttempts: 1},
	})
}

func TestAnalyzeValidation(t *testing.T) {
	eng := newTestEngine(&fakeStore{}, nil)
	ctx := context.Background()

	_, err := eng.Analyze(ctx, Request{OrganizationID: "org-1"})
	assert.ErrorIs(t, err, ErrMissingText)

	_, err = eng.Analyze(ctx, Request{Text: "hello there"})
	assert.ErrorIs(t, err, ErrMissingOrganization)

	_, err = eng.Analyze(ctx, Request{Text: "hello there", OrganizationID: "org-1", AnalysisType: "sentiment"})
	assert.ErrorIs(t, err, ErrUnknownAnalysisType)
}

func TestAnalyzeFullWithDefaults(t *testing.T) {
	store := &fakeStore{}
	eng := newTestEngine(store, nil)

	result, err := eng.Analyze(context.Background(), Request{
		Text:           "the team made good progress this week",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AnalysisID)
	require.NotNil(t, result.Coherence)
	require.NotNil(t, result.Entropy)
	require.NotNil(t, result.Drift)
	require.NotNil(t, result.Resonance)

	// No baseline: drift is unknown, not absent.
	assert.Equal(t, 0.0, result.Drift.Score)
	assert.Equal(t, 0.1, result.Drift.Confidence)

	// No mission: neutral resonance with zero confidence.
	assert.Equal(t, 0.5, result.Resonance.Score)
	assert.Equal(t, 0.0, result.Resonance.Confidence)

	// Coherence and entropy blocks contribute the default confidence.
	assert.Equal(t, 0.5, result.Confidence)

	require.Len(t, store.analyses, 1)
	record := store.analyses[0]
	assert.Equal(t, result.AnalysisID, record.ID)
	assert.Equal(t, TypeFull, record.AnalysisType)
	assert.Equal(t, 0.0, record.VarianceScore)
	assert.True(t, json.Valid([]byte(record.Metrics)))
}

func TestAnalyzeSingleTypeSelectors(t *testing.T) {
	eng := newTestEngine(&fakeStore{}, nil)
	ctx := context.Background()

	result, err := eng.Analyze(ctx, Request{Text: "hello there team", OrganizationID: "org-1", AnalysisType: TypeCoherence})
	require.NoError(t, err)
	assert.NotNil(t, result.Coherence)
	assert.Nil(t, result.Entropy)
	assert.Nil(t, result.Drift)
	assert.Nil(t, result.Resonance)

	result, err = eng.Analyze(ctx, Request{Text: "hello there team", OrganizationID: "org-1", AnalysisType: TypeDrift})
	require.NoError(t, err)
	assert.Nil(t, result.Coherence)
	assert.Nil(t, result.Entropy)
	require.NotNil(t, result.Drift)
	assert.Equal(t, 0.1, result.Confidence)
}

func TestAnalyzeUsesRequestMission(t *testing.T) {
	store := &fakeStore{mission: "stored mission statement ignored here"}
	eng := newTestEngine(store, nil)

	mission := "build reliable tools"
	result, err := eng.Analyze(context.Background(), Request{
		Text:             mission,
		OrganizationID:   "org-1",
		MissionStatement: mission,
		AnalysisType:     TypeResonance,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Resonance)
	assert.Equal(t, 1.0, result.Resonance.SemanticAlignment)
}

func TestAnalyzeDriftAgainstStoredBaseline(t *testing.T) {
	baseline := analysis.BaselineMetrics{
		MetaphorDensity: 1,
		ModalDensity:    1,
		CoherenceScore:  1,
		Entropy:         0.9,
	}
	data, err := json.Marshal(baseline)
	require.NoError(t, err)

	store := &fakeStore{baselineData: string(data)}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	// Two disjoint sentences with no metaphor, modal, or sentiment cues:
	// every tracked metric sits far from the baseline.
	result, err := eng.Analyze(context.Background(), Request{
		Text:           "alpha beta. gamma delta.",
		OrganizationID: "org-1",
		UnitID:         "unit-9",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Drift)
	assert.Greater(t, result.Drift.Score, 0.9)

	require.Len(t, result.Alerts, 1)
	event := result.Alerts[0]
	assert.Equal(t, alerts.TypeDrift, event.Alert.Type)
	assert.Equal(t, analysis.SeverityCritical, event.Alert.Severity)
	assert.Equal(t, "org-1", event.OrganizationID)
	assert.Equal(t, "unit-9", event.UnitID)

	require.Len(t, store.alertRecords, 1)
	assert.Equal(t, event.ID, store.alertRecords[0].ID)
	assert.Equal(t, alerts.StatusOpen, store.alertRecords[0].Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, event.ID, notifier.events[0].ID)

	assert.Equal(t, result.Drift.Score, store.analyses[0].VarianceScore)
}

func TestAnalyzeMalformedBaselineTreatedAsAbsent(t *testing.T) {
	store := &fakeStore{baselineData: "{not json"}
	eng := newTestEngine(store, nil)

	result, err := eng.Analyze(context.Background(), Request{
		Text:           "steady words here today",
		OrganizationID: "org-1",
		AnalysisType:   TypeDrift,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Drift.Score)
	assert.Equal(t, 0.1, result.Drift.Confidence)
}

func TestAnalyzeReturnsResultWhenPersistenceFails(t *testing.T) {
	store := &fakeStore{analysisErr: errors.New("disk full")}
	eng := newTestEngine(store, nil)

	result, err := eng.Analyze(context.Background(), Request{
		Text:           "the scores still matter",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Coherence)
	assert.Empty(t, store.analyses)
}

func TestAnalyzeAlertPersistFailureSkipsNotify(t *testing.T) {
	baseline := analysis.BaselineMetrics{MetaphorDensity: 1, ModalDensity: 1, CoherenceScore: 1, Entropy: 0.9}
	data, err := json.Marshal(baseline)
	require.NoError(t, err)

	store := &fakeStore{baselineData: string(data), alertErr: errors.New("write refused")}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	result, err := eng.Analyze(context.Background(), Request{
		Text:           "alpha beta. gamma delta.",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)

	assert.Empty(t, result.Alerts)
	assert.Empty(t, notifier.events)
}

func TestAnalyzeResonanceConfidenceWins(t *testing.T) {
	eng := newTestEngine(&fakeStore{}, nil)

	// 50+ tokens saturate resonance confidence at 1.0, above the defaults.
	text := ""
	for i := 0; i < 60; i++ {
		text += "word "
	}

	result, err := eng.Analyze(context.Background(), Request{
		Text:             text,
		OrganizationID:   "org-1",
		MissionStatement: "serve customers well",
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Confidence)
}
