// model.go this code defines the data model for the application
package datastore

import "time"

// Disposal represents one classified waste-disposal event. Disposals are
// events, not deduplicated entities: every accepted upload creates a new row,
// and rows are never mutated after creation.
type Disposal struct {
	ID                   uint   `gorm:"primaryKey"`
	BinID                string `gorm:"index:idx_disposals_bin"`
	BinType              string `gorm:"type:varchar(20);index:idx_disposals_type;index:idx_disposals_type_captured"`
	ImagePath            string
	ClassificationMethod string `gorm:"type:varchar(10)"`
	Confidence           float64
	FileSizeBytes        int64
	CapturedAt           time.Time `gorm:"index:idx_disposals_captured;index:idx_disposals_type_captured"`
}

// MonthlyWasteCount aggregates disposals for one calendar month.
type MonthlyWasteCount struct {
	Month        string `json:"month"` // YYYY-MM
	Hazardous    int64  `json:"hazardous"`
	NonHazardous int64  `json:"nonHazardous"`
}
