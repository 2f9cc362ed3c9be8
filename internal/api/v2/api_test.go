// api_test.go: shared test environment for API v2 handler tests.

package api

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/datastore"
	"github.com/wastenet/wastenet-go/internal/imagestore"
	"github.com/wastenet/wastenet-go/internal/processor"
	"gorm.io/gorm"
)

// fakeLabeler returns a canned classification.
type fakeLabeler struct {
	result classifier.Classification
}

func (f *fakeLabeler) ClassifyFile(path string, sizeBytes int64) classifier.Classification {
	return f.result
}

// mockDataStore backs handler tests with an in-memory record list.
type mockDataStore struct {
	disposals []datastore.Disposal
	saveErr   error
	nextID    uint
}

func (m *mockDataStore) Open() error  { return nil }
func (m *mockDataStore) Close() error { return nil }

func (m *mockDataStore) Save(d *datastore.Disposal) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	d.ID = m.nextID
	m.disposals = append(m.disposals, *d)
	return nil
}

func (m *mockDataStore) Get(id string) (datastore.Disposal, error) {
	for i := range m.disposals {
		if fmt.Sprint(m.disposals[i].ID) == id {
			return m.disposals[i], nil
		}
	}
	return datastore.Disposal{}, fmt.Errorf("disposal %s: %w", id, gorm.ErrRecordNotFound)
}

func (m *mockDataStore) Delete(id string) error {
	for i := range m.disposals {
		if fmt.Sprint(m.disposals[i].ID) == id {
			m.disposals = append(m.disposals[:i], m.disposals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("disposal %s: %w", id, gorm.ErrRecordNotFound)
}

func (m *mockDataStore) GetAllDisposals(limit, offset int) ([]datastore.Disposal, int64, error) {
	total := int64(len(m.disposals))
	if offset >= len(m.disposals) {
		return nil, total, nil
	}
	end := min(offset+limit, len(m.disposals))
	return m.disposals[offset:end], total, nil
}

func (m *mockDataStore) GetDisposalsByType(binType string, limit, offset int) ([]datastore.Disposal, int64, error) {
	var matched []datastore.Disposal
	for i := range m.disposals {
		if m.disposals[i].BinType == binType {
			matched = append(matched, m.disposals[i])
		}
	}
	return matched, int64(len(matched)), nil
}

func (m *mockDataStore) GetLastDisposals(n int) ([]datastore.Disposal, error) {
	if n > len(m.disposals) {
		n = len(m.disposals)
	}
	return m.disposals[len(m.disposals)-n:], nil
}

func (m *mockDataStore) MonthlyWasteCounts(months int) ([]datastore.MonthlyWasteCount, error) {
	return []datastore.MonthlyWasteCount{{Month: "2026-08", Hazardous: 2, NonHazardous: 1}}, nil
}

// setupTestEnvironment builds a controller wired to mocks; routes are not
// registered since handlers are invoked directly.
func setupTestEnvironment(t *testing.T, ds *mockDataStore, labeler processor.Labeler) (*echo.Echo, *Controller) {
	t.Helper()

	e := echo.New()

	settings := &conf.Settings{}
	settings.Capture.BinID = "ESP32CAM-01"
	settings.Capture.Path = t.TempDir()
	settings.Classifier.FallbackThresholdBytes = conf.DefaultFallbackThresholdBytes

	images, err := imagestore.New(settings.Capture.Path, nil)
	require.NoError(t, err)

	proc := processor.New(settings, images, labeler, ds, nil)

	controller := &Controller{
		Echo:          e,
		DS:            ds,
		Settings:      settings,
		Processor:     proc,
		Classifier:    classifier.New(settings, nil),
		Images:        images,
		logger:        log.New(io.Discard, "", 0),
		disposalCache: cache.New(time.Minute, 5*time.Minute),
		apiLogger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		startTime:     time.Now(),
	}
	return e, controller
}
