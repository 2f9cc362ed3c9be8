package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/datastore"
)

func seedDisposals(ds *mockDataStore, n int) {
	base := time.Now().Add(-time.Hour)
	for i := range n {
		binType := classifier.LabelHazardous
		if i%2 == 1 {
			binType = classifier.LabelNonHazardous
		}
		_ = ds.Save(&datastore.Disposal{
			BinID:                "ESP32CAM-01",
			BinType:              binType,
			ImagePath:            fmt.Sprintf("capture_%d.jpg", i),
			ClassificationMethod: classifier.MethodModel,
			Confidence:           0.8,
			FileSizeBytes:        5000,
			CapturedAt:           base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestGetDisposals(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	seedDisposals(ds, 3)
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetDisposals(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestGetDisposalsTypeFilter(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	seedDisposals(ds, 4)
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals?type=Non-Hazardous", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetDisposals(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.Total)
}

func TestGetDisposalsInvalidTypeFilter(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals?type=Recyclable", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetDisposals(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecentDisposalsUsesCache(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	seedDisposals(ds, 2)
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals/recent", http.NoBody)
	rec := httptest.NewRecorder()
	require.NoError(t, controller.GetRecentDisposals(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var first []DisposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Len(t, first, 2)

	// New rows must not show up until the cache entry expires or is flushed.
	seedDisposals(ds, 1)
	rec = httptest.NewRecorder()
	require.NoError(t, controller.GetRecentDisposals(e.NewContext(req, rec)))

	var second []DisposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Len(t, second, 2)

	controller.disposalCache.Flush()
	rec = httptest.NewRecorder()
	require.NoError(t, controller.GetRecentDisposals(e.NewContext(req, rec)))

	var third []DisposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &third))
	assert.Len(t, third, 3)
}

func TestGetDisposal(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	seedDisposals(ds, 1)
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals/1", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")

	require.NoError(t, controller.GetDisposal(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp DisposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.ID)
	assert.Equal(t, "capture_0.jpg", resp.ImagePath)
}

func TestGetDisposalNotFound(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/disposals/99", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("99")

	require.NoError(t, controller.GetDisposal(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDisposal(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	// Store a real image so deletion can remove it.
	name, _, err := controller.Images.SaveJPEG([]byte("frame"))
	require.NoError(t, err)
	require.NoError(t, ds.Save(&datastore.Disposal{
		BinID:      "ESP32CAM-01",
		BinType:    classifier.LabelHazardous,
		ImagePath:  name,
		CapturedAt: time.Now(),
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/disposals/1", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")

	require.NoError(t, controller.DeleteDisposal(ctx))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, ds.disposals)

	_, err = controller.Images.Stat(name)
	assert.Error(t, err)
}

func TestDeleteDisposalNotFound(t *testing.T) {
	t.Parallel()

	ds := &mockDataStore{}
	e, controller := setupTestEnvironment(t, ds, &fakeLabeler{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/disposals/42", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("42")

	require.NoError(t, controller.DeleteDisposal(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
