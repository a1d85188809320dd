package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prediction-engine/config"
	"prediction-engine/database"
	"prediction-engine/engine"
	"prediction-engine/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *engine.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(db, config.Default(), log)
	h := New(eng, log)

	r := gin.New()
	api := r.Group("/api")
	orgs := api.Group("/organizations/:org_id")
	orgs.POST("/signals", h.IngestSignals)
	orgs.GET("/signals", h.GetSignals)
	orgs.GET("/forecasts", h.GetForecasts)
	orgs.POST("/forecasts/generate", h.GenerateForecast)
	orgs.GET("/rules", h.GetRules)
	orgs.POST("/rules", h.CreateRule)
	orgs.GET("/stats", h.GetStats)
	orgs.POST("/cache/purge", h.PurgeCache)
	api.PATCH("/rules/:rule_id", h.UpdateRule)
	api.DELETE("/rules/:rule_id", h.DeleteRule)
	return r, eng
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ingestBody(n int, source models.SourceType, payload models.JSONMap) gin.H {
	signals := make([]gin.H, 0, n)
	for i := 0; i < n; i++ {
		signals = append(signals, gin.H{"source_type": source, "payload": payload})
	}
	return gin.H{"signals": signals}
}

// TestIngestEndpoint verifies the happy path returns 202 with batch
// accounting.
func TestIngestEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(3, models.SourceBilling, models.JSONMap{"consumption_rate": 5.0}))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["stored"])
}

// TestIngestEndpoint_UnknownSource verifies validation failures map to
// 400 and cache nothing.
func TestIngestEndpoint_UnknownSource(t *testing.T) {
	r, eng := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(1, "smoke-signal", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cached, err := eng.Cache().Recent("org-1", 10)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

// TestIngestEndpoint_MalformedBody verifies a non-JSON body is a 400.
func TestIngestEndpoint_MalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/organizations/org-1/signals", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestForecastListing verifies forecasts generated by an ingest are
// queryable, window filter included.
func TestForecastListing(t *testing.T) {
	r, _ := newTestRouter(t)

	// Six pending approvals trip the bottleneck predictor.
	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(6, models.SourceApprovalQueue, models.JSONMap{"status": "pending"}))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/organizations/org-1/forecasts?window=5m", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []models.ForecastEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, models.RiskBottleneck, events[0].RiskType)
	assert.Equal(t, models.Window5m, events[0].ForecastWindow)

	w = doJSON(t, r, http.MethodGet, "/api/organizations/org-1/forecasts?window=1y", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestGenerateEndpoint verifies on-demand generation for a long
// window and rejection of unknown windows.
func TestGenerateEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(6, models.SourceApprovalQueue, models.JSONMap{"status": "pending"}))

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/forecasts/generate", gin.H{"window": "24h"})
	require.Equal(t, http.StatusOK, w.Code)
	var events []models.ForecastEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, models.Window24h, events[0].ForecastWindow)

	w = doJSON(t, r, http.MethodPost, "/api/organizations/org-1/forecasts/generate", gin.H{"window": "1y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestRuleLifecycle walks create, list, update, and delete.
func TestRuleLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", gin.H{
		"rule_name":          "escalate anomalies",
		"risk_type":          "anomaly",
		"min_confidence":     60,
		"recommended_action": "auto_escalate",
		"priority":           10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.PolicyRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Enabled)

	w = doJSON(t, r, http.MethodGet, "/api/organizations/org-1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rules []models.PolicyRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Len(t, rules, 1)

	w = doJSON(t, r, http.MethodPatch, "/api/rules/"+created.ID, gin.H{
		"recommended_action": "block_future",
		"enabled":            false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.PolicyRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.ActionBlockFuture, updated.RecommendedAction)
	assert.False(t, updated.Enabled)

	w = doJSON(t, r, http.MethodDelete, "/api/rules/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/rules/"+created.ID, gin.H{"enabled": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestCreateRule_UnknownAction verifies enum validation on creation.
func TestCreateRule_UnknownAction(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", gin.H{
		"rule_name":          "bad",
		"recommended_action": "launch_missiles",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPurgeEndpoint verifies the administrative purge reports the
// removed count.
func TestPurgeEndpoint(t *testing.T) {
	r, eng := newTestRouter(t)

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, eng.Cache().Ingest("org-1", []models.Signal{
		{SourceType: models.SourceVoice, ReceivedAt: old},
		{SourceType: models.SourceVoice},
	}))

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/cache/purge",
		gin.H{"older_than": time.Now().UTC().Add(-time.Hour)})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["purged"])
}

// TestStatsEndpoint verifies the aggregate view counts emitted
// forecasts by risk type.
func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(6, models.SourceApprovalQueue, models.JSONMap{"status": "pending"}))

	w := doJSON(t, r, http.MethodGet, "/api/organizations/org-1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalForecasts int64            `json:"total_forecasts"`
		ByRiskType     map[string]int64 `json:"by_risk_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalForecasts)
	assert.Equal(t, int64(3), resp.ByRiskType["bottleneck"])
}

// TestSignalsDiagnosticListing verifies the newest-first diagnostic
// view.
func TestSignalsDiagnosticListing(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(2, models.SourceVoice, models.JSONMap{"status": "parsed"}))

	w := doJSON(t, r, http.MethodGet, "/api/organizations/org-1/signals?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var signals []models.Signal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signals))
	assert.Len(t, signals, 1)
}

// TestCreateRule_DuplicateName verifies a name collision within the
// organization maps to 409.
func TestCreateRule_DuplicateName(t *testing.T) {
	r, _ := newTestRouter(t)

	body := gin.H{
		"rule_name":          "escalate anomalies",
		"recommended_action": "auto_escalate",
	}
	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Another organization can reuse the name.
	w = doJSON(t, r, http.MethodPost, "/api/organizations/org-2/rules", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

// TestUpdateRule_NameCollision verifies renaming onto a sibling rule's
// name maps to 409.
func TestUpdateRule_NameCollision(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", gin.H{
		"rule_name":          "first",
		"recommended_action": "warn",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/organizations/org-1/rules", gin.H{
		"rule_name":          "second",
		"recommended_action": "warn",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var second models.PolicyRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	w = doJSON(t, r, http.MethodPatch, "/api/rules/"+second.ID, gin.H{"rule_name": "first"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestListings_MalformedLimit verifies an unparseable or non-positive
// limit falls back to the default instead of returning nothing.
func TestListings_MalformedLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/organizations/org-1/signals",
		ingestBody(6, models.SourceApprovalQueue, models.JSONMap{"status": "pending"}))

	for _, limit := range []string{"abc", "-1", "0"} {
		w := doJSON(t, r, http.MethodGet, "/api/organizations/org-1/signals?limit="+limit, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var signals []models.Signal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signals))
		assert.Len(t, signals, 6, "limit=%s", limit)

		w = doJSON(t, r, http.MethodGet, "/api/organizations/org-1/forecasts?limit="+limit, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var events []models.ForecastEvent
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
		assert.NotEmpty(t, events, "limit=%s", limit)
	}
}
