// Package processor wires the upload pipeline: image ingest, classification
// and disposal record persistence, strictly in that order.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/datastore"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/imagestore"
	"github.com/wastenet/wastenet-go/internal/logging"
	"github.com/wastenet/wastenet-go/internal/mqtt"
)

// Sentinel errors the HTTP layer branches on. Classification failures are
// deliberately absent: they degrade to the fallback heuristic inside the
// classifier and never fail a request.
var (
	// ErrEmptyUpload is returned for zero-length image buffers.
	ErrEmptyUpload = errors.NewStd("empty upload")

	// ErrImageWrite is returned when the image cannot be stored; no record
	// is created in this case.
	ErrImageWrite = errors.NewStd("image write failed")

	// ErrPersist is returned when the record insert fails after the image
	// was stored. The stored image is left in place as a documented,
	// acceptable orphan; the device is expected to retry the upload.
	ErrPersist = errors.NewStd("disposal record insert failed")
)

// Labeler produces a classification for a stored image. Satisfied by
// *classifier.Classifier; narrowed to an interface so tests can substitute
// deterministic outcomes.
type Labeler interface {
	ClassifyFile(path string, sizeBytes int64) classifier.Classification
}

// Processor executes the upload pipeline for one camera frame at a time.
// Concurrent requests are independent; the only shared state is the database
// and the filesystem.
type Processor struct {
	Settings   *conf.Settings
	Images     *imagestore.Store
	Classifier Labeler
	DS         datastore.Interface
	Publisher  mqtt.Client // nil when MQTT is disabled

	logger *slog.Logger
}

// New creates a Processor. Publisher may be nil.
func New(settings *conf.Settings, images *imagestore.Store, labeler Labeler, ds datastore.Interface, publisher mqtt.Client) *Processor {
	logger := logging.ForService("processor")
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Settings:   settings,
		Images:     images,
		Classifier: labeler,
		DS:         ds,
		Publisher:  publisher,
		logger:     logger,
	}
}

// Process runs the three pipeline stages for one uploaded frame and returns
// the persisted disposal record. File write strictly precedes classification,
// which strictly precedes the insert: classification reads the stored file,
// and no record may exist without a successfully written image.
func (p *Processor) Process(ctx context.Context, binID string, image []byte) (*datastore.Disposal, error) {
	if len(image) == 0 {
		return nil, ErrEmptyUpload
	}
	if binID == "" {
		binID = p.Settings.Capture.BinID
	}

	name, size, err := p.Images.SaveJPEG(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageWrite, err)
	}

	result := p.Classifier.ClassifyFile(filepath.Join(p.Images.BaseDir(), name), size)

	disposal := &datastore.Disposal{
		BinID:                binID,
		BinType:              result.Label,
		ImagePath:            name,
		ClassificationMethod: result.Method,
		Confidence:           result.Confidence,
		FileSizeBytes:        size,
		CapturedAt:           time.Now(),
	}

	if err := p.DS.Save(disposal); err != nil {
		p.logger.Error("disposal insert failed after image write, image orphaned",
			"image", name,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	p.logger.Info("disposal recorded",
		"id", disposal.ID,
		"bin_id", disposal.BinID,
		"bin_type", disposal.BinType,
		"method", disposal.ClassificationMethod,
		"size_bytes", disposal.FileSizeBytes)

	p.publishEvent(ctx, disposal)

	return disposal, nil
}

// publishEvent sends the disposal to the MQTT broker. Best effort and
// post-commit: a broker failure never fails the upload request.
func (p *Processor) publishEvent(ctx context.Context, disposal *datastore.Disposal) {
	if p.Publisher == nil || !p.Settings.MQTT.Enabled {
		return
	}

	event := mqtt.DisposalEvent{
		ID:                   disposal.ID,
		BinID:                disposal.BinID,
		BinType:              disposal.BinType,
		ClassificationMethod: disposal.ClassificationMethod,
		Confidence:           disposal.Confidence,
		ImagePath:            disposal.ImagePath,
		FileSizeBytes:        disposal.FileSizeBytes,
		CapturedAt:           disposal.CapturedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal disposal event", "error", err)
		return
	}

	if err := p.Publisher.Publish(ctx, p.Settings.MQTT.Topic, string(payload)); err != nil {
		p.logger.Warn("failed to publish disposal event",
			"topic", p.Settings.MQTT.Topic,
			"error", err)
	}
}
