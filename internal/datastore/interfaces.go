// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/observability"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations the application needs on disposal records.
type Interface interface {
	Open() error
	Close() error
	Save(disposal *Disposal) error
	Get(id string) (Disposal, error)
	Delete(id string) error
	GetAllDisposals(limit, offset int) ([]Disposal, int64, error)
	GetDisposalsByType(binType string, limit, offset int) ([]Disposal, int64, error)
	GetLastDisposals(numDisposals int) ([]Disposal, error)
	MonthlyWasteCounts(months int) ([]MonthlyWasteCount, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB
	metrics *observability.Metrics
}

// New creates a new datastore instance based on the provided configuration.
// Returns nil when no backend is enabled; callers must check.
func New(settings *conf.Settings, metrics *observability.Metrics) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{metrics: metrics},
			Settings:  settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{metrics: metrics},
			Settings:  settings,
		}
	default:
		return nil
	}
}

func (ds *DataStore) recordOperation(operation string, start time.Time, err error) {
	if ds.metrics != nil {
		ds.metrics.Datastore.RecordOperation(operation, err, time.Since(start))
	}
}

// Save inserts a new disposal record. Exactly one insert per call; there are
// no update-or-insert semantics.
func (ds *DataStore) Save(disposal *Disposal) error {
	start := time.Now()
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	err := ds.DB.Create(disposal).Error
	ds.recordOperation("save", start, err)
	if err != nil {
		return fmt.Errorf("saving disposal: %w", err)
	}
	return nil
}

// Get retrieves a disposal record by its ID from the database.
func (ds *DataStore) Get(id string) (Disposal, error) {
	start := time.Now()
	disposalID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Disposal{}, fmt.Errorf("converting ID to integer: %w", err)
	}

	var disposal Disposal
	err = ds.DB.First(&disposal, disposalID).Error
	ds.recordOperation("get", start, err)
	if err != nil {
		return Disposal{}, fmt.Errorf("getting disposal with ID %d: %w", disposalID, err)
	}
	return disposal, nil
}

// Delete removes a disposal record from the database.
func (ds *DataStore) Delete(id string) error {
	start := time.Now()
	disposalID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("converting ID to integer: %w", err)
	}

	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Disposal{}, disposalID)
		if result.Error != nil {
			return fmt.Errorf("deleting disposal with ID %d: %w", disposalID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("disposal with ID %d: %w", disposalID, gorm.ErrRecordNotFound)
		}
		return nil
	})
	ds.recordOperation("delete", start, err)
	return err
}

// GetAllDisposals returns a page of disposal records ordered by capture time
// descending, along with the total row count.
func (ds *DataStore) GetAllDisposals(limit, offset int) ([]Disposal, int64, error) {
	start := time.Now()

	var total int64
	if err := ds.DB.Model(&Disposal{}).Count(&total).Error; err != nil {
		ds.recordOperation("list", start, err)
		return nil, 0, fmt.Errorf("counting disposals: %w", err)
	}

	var disposals []Disposal
	err := ds.DB.Order("captured_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&disposals).Error
	ds.recordOperation("list", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("listing disposals: %w", err)
	}
	return disposals, total, nil
}

// GetDisposalsByType returns a page of disposal records for one bin type.
func (ds *DataStore) GetDisposalsByType(binType string, limit, offset int) ([]Disposal, int64, error) {
	start := time.Now()

	var total int64
	if err := ds.DB.Model(&Disposal{}).Where("bin_type = ?", binType).Count(&total).Error; err != nil {
		ds.recordOperation("list_by_type", start, err)
		return nil, 0, fmt.Errorf("counting %s disposals: %w", binType, err)
	}

	var disposals []Disposal
	err := ds.DB.Where("bin_type = ?", binType).
		Order("captured_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&disposals).Error
	ds.recordOperation("list_by_type", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s disposals: %w", binType, err)
	}
	return disposals, total, nil
}

// GetLastDisposals returns the most recent disposal records.
func (ds *DataStore) GetLastDisposals(numDisposals int) ([]Disposal, error) {
	start := time.Now()

	var disposals []Disposal
	err := ds.DB.Order("captured_at DESC").
		Limit(numDisposals).
		Find(&disposals).Error
	ds.recordOperation("recent", start, err)
	if err != nil {
		return nil, fmt.Errorf("getting recent disposals: %w", err)
	}
	return disposals, nil
}
