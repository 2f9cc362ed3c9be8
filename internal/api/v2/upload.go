// internal/api/v2/upload.go
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/processor"
)

// UploadResponse is returned after a successful image upload and
// classification.
type UploadResponse struct {
	ID                   uint    `json:"id"`
	BinID                string  `json:"binId"`
	BinType              string  `json:"binType"`
	ClassificationMethod string  `json:"classificationMethod"`
	Confidence           float64 `json:"confidence"`
	ImagePath            string  `json:"imagePath"`
	FileSizeBytes        int64   `json:"fileSizeBytes"`
	CapturedAt           string  `json:"capturedAt"`
}

// UploadImage handles POST /api/v2/upload. The request body is the raw JPEG
// frame from the camera; the bin identity comes from the X-Bin-ID header and
// defaults to the configured capture bin.
func (c *Controller) UploadImage(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read request body", http.StatusBadRequest)
	}

	binID := ctx.Request().Header.Get("X-Bin-ID")

	disposal, err := c.Processor.Process(ctx.Request().Context(), binID, body)
	switch {
	case err == nil:
		// fall through to response
	case errors.Is(err, processor.ErrEmptyUpload):
		return c.HandleError(ctx, err, "No image data received", http.StatusBadRequest)
	case errors.Is(err, processor.ErrImageWrite):
		return c.HandleError(ctx, err, "Failed to store image", http.StatusInternalServerError)
	case errors.Is(err, processor.ErrPersist):
		return c.HandleError(ctx, err, "Failed to record disposal", http.StatusInternalServerError)
	default:
		return c.HandleError(ctx, err, "Failed to process upload", http.StatusInternalServerError)
	}

	// A new record invalidates cached recent-disposal queries.
	c.disposalCache.Flush()

	c.logAPIRequest(ctx, slog.LevelInfo, "Image processed",
		"id", disposal.ID,
		"bin_id", disposal.BinID,
		"bin_type", disposal.BinType,
		"method", disposal.ClassificationMethod,
		"size_bytes", disposal.FileSizeBytes,
	)

	return ctx.JSON(http.StatusCreated, UploadResponse{
		ID:                   disposal.ID,
		BinID:                disposal.BinID,
		BinType:              disposal.BinType,
		ClassificationMethod: disposal.ClassificationMethod,
		Confidence:           disposal.Confidence,
		ImagePath:            disposal.ImagePath,
		FileSizeBytes:        disposal.FileSizeBytes,
		CapturedAt:           disposal.CapturedAt.Format(time.RFC3339),
	})
}
