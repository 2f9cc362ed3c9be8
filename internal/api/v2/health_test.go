package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastenet/wastenet-go/internal/classifier"
)

func TestGetHealthDegradedWithoutModel(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetHealth(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// The fallback heuristic keeps uploads working, so a missing model is
	// degraded rather than unhealthy.
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.ModelReady)
	assert.True(t, resp.DatabaseOK)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestGetModelStatus(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/model", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetModelStatus(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status classifier.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Ready)
	assert.Equal(t, classifier.Labels(), status.Labels)
	assert.Zero(t, status.LoadAttempts)
}

func TestGetMonthlyWasteCounts(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/analytics/waste/monthly", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetMonthlyWasteCounts(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var counts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	require.Len(t, counts, 1)
	assert.Equal(t, "2026-08", counts[0]["month"])
}
