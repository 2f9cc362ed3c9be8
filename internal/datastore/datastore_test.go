package datastore

import (
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastenet/wastenet-go/internal/conf"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "wastenet.db")

	store := New(settings, nil)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDisposal(capturedAt time.Time) *Disposal {
	return &Disposal{
		BinID:                "ESP32CAM-01",
		BinType:              "Hazardous",
		ImagePath:            "capture_20250101T120000_abcd1234.jpg",
		ClassificationMethod: "model",
		Confidence:           0.93,
		FileSizeBytes:        5120,
		CapturedAt:           capturedAt,
	}
}

func TestNewWithoutBackend(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	assert.Nil(t, New(settings, nil))
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	disposal := testDisposal(time.Now())
	require.NoError(t, store.Save(disposal))
	require.NotZero(t, disposal.ID)

	got, err := store.Get(strconv.FormatUint(uint64(disposal.ID), 10))
	require.NoError(t, err)

	// Labels are stored verbatim, no coercion on read or write.
	assert.Equal(t, "Hazardous", got.BinType)
	assert.Equal(t, "model", got.ClassificationMethod)
	assert.Equal(t, "ESP32CAM-01", got.BinID)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
	assert.Equal(t, int64(5120), got.FileSizeBytes)
}

func TestGetInvalidID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Get("not-a-number")
	assert.Error(t, err)
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Get("12345")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	disposal := testDisposal(time.Now())
	require.NoError(t, store.Save(disposal))

	id := strconv.FormatUint(uint64(disposal.ID), 10)
	require.NoError(t, store.Delete(id))

	_, err := store.Get(id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting again reports not found.
	assert.ErrorIs(t, store.Delete(id), gorm.ErrRecordNotFound)
}

func TestGetAllDisposalsPagination(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		d := testDisposal(base.Add(time.Duration(i) * time.Minute))
		d.ImagePath = fmt.Sprintf("capture_%d.jpg", i)
		require.NoError(t, store.Save(d))
	}

	disposals, total, err := store.GetAllDisposals(2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, disposals, 2)

	// Newest first.
	assert.Equal(t, "capture_4.jpg", disposals[0].ImagePath)
	assert.Equal(t, "capture_3.jpg", disposals[1].ImagePath)

	disposals, total, err = store.GetAllDisposals(2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, disposals, 1)
	assert.Equal(t, "capture_0.jpg", disposals[0].ImagePath)
}

func TestGetDisposalsByType(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	now := time.Now()
	hazardous := testDisposal(now)
	require.NoError(t, store.Save(hazardous))

	nonHazardous := testDisposal(now.Add(time.Minute))
	nonHazardous.BinType = "Non-Hazardous"
	require.NoError(t, store.Save(nonHazardous))

	disposals, total, err := store.GetDisposalsByType("Non-Hazardous", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, disposals, 1)
	assert.Equal(t, "Non-Hazardous", disposals[0].BinType)
}

func TestGetLastDisposals(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		d := testDisposal(base.Add(time.Duration(i) * time.Minute))
		d.ImagePath = fmt.Sprintf("capture_%d.jpg", i)
		require.NoError(t, store.Save(d))
	}

	disposals, err := store.GetLastDisposals(2)
	require.NoError(t, err)
	require.Len(t, disposals, 2)
	assert.Equal(t, "capture_2.jpg", disposals[0].ImagePath)
}

func TestMonthlyWasteCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 15, 12, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Save(testDisposal(thisMonth)))
	}
	nonHazardous := testDisposal(lastMonth)
	nonHazardous.BinType = "Non-Hazardous"
	require.NoError(t, store.Save(nonHazardous))

	counts, err := store.MonthlyWasteCounts(3)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	// Oldest month first, zero-filled where nothing was recorded.
	assert.Equal(t, thisMonth.AddDate(0, -2, 0).Format("2006-01"), counts[0].Month)
	assert.Zero(t, counts[0].Hazardous)
	assert.Zero(t, counts[0].NonHazardous)

	assert.Equal(t, lastMonth.Format("2006-01"), counts[1].Month)
	assert.Zero(t, counts[1].Hazardous)
	assert.EqualValues(t, 1, counts[1].NonHazardous)

	assert.Equal(t, thisMonth.Format("2006-01"), counts[2].Month)
	assert.EqualValues(t, 2, counts[2].Hazardous)
	assert.Zero(t, counts[2].NonHazardous)
}
