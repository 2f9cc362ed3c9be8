// analytics.go aggregate queries backing the reporting endpoints
package datastore

import (
	"fmt"
	"time"
)

// MonthlyWasteCounts returns per-month Hazardous and Non-Hazardous disposal
// counts for the last `months` calendar months, oldest first. Months with no
// disposals are included with zero counts so charts have a continuous axis.
//
// The rollup happens in Go rather than SQL because month truncation syntax
// differs between SQLite and MySQL and the row volume from a single camera
// is small.
func (ds *DataStore) MonthlyWasteCounts(months int) ([]MonthlyWasteCount, error) {
	if months <= 0 {
		months = 12
	}

	now := time.Now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	type row struct {
		BinType    string
		CapturedAt time.Time
	}
	var rows []row
	err := ds.DB.Model(&Disposal{}).
		Select("bin_type", "captured_at").
		Where("captured_at >= ?", firstMonth).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying monthly waste counts: %w", err)
	}

	counts := make([]MonthlyWasteCount, months)
	index := make(map[string]int, months)
	for i := range counts {
		month := firstMonth.AddDate(0, i, 0).Format("2006-01")
		counts[i].Month = month
		index[month] = i
	}

	for _, r := range rows {
		i, ok := index[r.CapturedAt.Format("2006-01")]
		if !ok {
			continue
		}
		switch r.BinType {
		case "Hazardous":
			counts[i].Hazardous++
		case "Non-Hazardous":
			counts[i].NonHazardous++
		}
	}

	return counts, nil
}
