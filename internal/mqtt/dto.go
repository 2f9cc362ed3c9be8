// dto.go: payload types published to the MQTT broker.
package mqtt

import "time"

// DisposalEvent is the JSON payload published for each persisted disposal
// record. Field names match the HTTP API so facility integrations can share
// one schema.
type DisposalEvent struct {
	ID                   uint      `json:"id"`
	BinID                string    `json:"binId"`
	BinType              string    `json:"binType"`
	ClassificationMethod string    `json:"classificationMethod"`
	Confidence           float64   `json:"confidence,omitempty"`
	ImagePath            string    `json:"imagePath"`
	FileSizeBytes        int64     `json:"fileSizeBytes"`
	CapturedAt           time.Time `json:"capturedAt"`
}
