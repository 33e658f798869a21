package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) (*fiber.App, *sqlite.Client) {
	t.Helper()

	db, err := sqlite.NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	app := fiber.New()
	alertsHandler := NewAlertsHandler(db)
	stabilizationHandler := NewStabilizationHandler(db)

	api := app.Group("/api/v1")
	api.Get("/alerts", alertsHandler.HandleListOpen)
	api.Post("/alerts/:id/resolve", alertsHandler.HandleResolve)
	api.Post("/stabilization/alerts/:alert_id/interventions", stabilizationHandler.HandleGeneratePackage)
	api.Get("/stabilization/alerts/:alert_id/interventions", stabilizationHandler.HandleListInterventions)
	api.Post("/stabilization/interventions/:id/implemented", stabilizationHandler.HandleMarkImplemented)
	api.Post("/stabilization/interventions/:id/effectiveness", stabilizationHandler.HandleEffectiveness)

	return app, db
}

func seedAlert(t *testing.T, db *sqlite.Client, id string) {
	t.Helper()

	actions := `{"immediate":["Review recent communication patterns"],` +
		`"stabilization":["Implement narrative reset protocol"],` +
		`"drift_indicators":["metaphor_decay","emotional_instability"]}`

	require.NoError(t, db.InsertAlert(context.Background(), &models.AlertRecord{
		ID:                 id,
		OrganizationID:     "org-1",
		AlertType:          "drift",
		Severity:           "high",
		Title:              "Symbolic Drift Detected",
		RecommendedActions: actions,
		Status:             "open",
		CreatedAt:          time.Now(),
	}))
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &parsed))
	}
	return resp, parsed
}

func TestListOpenAlertsRequiresOrganization(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/alerts", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAndResolveAlert(t *testing.T) {
	app, db := newTestApp(t)
	seedAlert(t, db, "alert-1")

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/alerts?organization_id=org-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/alerts/alert-1/resolve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "resolved", body["status"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/alerts/alert-1/resolve", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/alerts?organization_id=org-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}

func TestGeneratePackageForMissingAlert(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/stabilization/alerts/nope/interventions", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStabilizationFlow(t *testing.T) {
	app, db := newTestApp(t)
	seedAlert(t, db, "alert-1")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/stabilization/alerts/alert-1/interventions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Two indicator prompts, two rituals for a high alert, four reframing
	// strategies.
	stored := body["interventions"].([]any)
	require.Len(t, stored, 8)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/stabilization/alerts/alert-1/interventions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := body["interventions"].([]any)
	require.Len(t, listed, 8)

	first := listed[0].(map[string]any)
	id := first["id"].(string)
	assert.Equal(t, "suggested", first["implementation_status"])

	snapshots := map[string]any{
		"before": map[string]any{"coherenceScore": 0.4, "resonanceScore": 0.3},
		"after":  map[string]any{"coherenceScore": 0.7, "resonanceScore": 0.6},
	}

	// Effectiveness before implementation is rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/stabilization/interventions/"+id+"/effectiveness", snapshots)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/stabilization/interventions/"+id+"/implemented", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/stabilization/interventions/"+id+"/effectiveness", snapshots)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])

	assessment := body["assessment"].(map[string]any)
	assert.Equal(t, "continue", assessment["recommendation"])

	record, err := db.GetIntervention(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "completed", record.ImplementationStatus)
	require.NotNil(t, record.EffectivenessScore)
}

func TestMarkImplementedMissingIntervention(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/stabilization/interventions/nope/implemented", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
