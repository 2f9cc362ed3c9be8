// internal/api/v2/disposals.go
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/datastore"
	"github.com/wastenet/wastenet-go/internal/errors"
	"gorm.io/gorm"
)

// DisposalResponse represents a disposal record in API responses
type DisposalResponse struct {
	ID                   uint    `json:"id"`
	BinID                string  `json:"binId"`
	BinType              string  `json:"binType"`
	ClassificationMethod string  `json:"classificationMethod"`
	Confidence           float64 `json:"confidence"`
	ImagePath            string  `json:"imagePath"`
	FileSizeBytes        int64   `json:"fileSizeBytes"`
	CapturedAt           string  `json:"capturedAt"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data        any   `json:"data"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

func toDisposalResponse(d *datastore.Disposal) DisposalResponse {
	return DisposalResponse{
		ID:                   d.ID,
		BinID:                d.BinID,
		BinType:              d.BinType,
		ClassificationMethod: d.ClassificationMethod,
		Confidence:           d.Confidence,
		ImagePath:            d.ImagePath,
		FileSizeBytes:        d.FileSizeBytes,
		CapturedAt:           d.CapturedAt.Format(time.RFC3339),
	}
}

// GetDisposals handles GET /api/v2/disposals with optional type filter and
// pagination.
func (c *Controller) GetDisposals(ctx echo.Context) error {
	binType := ctx.QueryParam("type")
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))

	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		// Enforce a maximum limit to prevent excessive loads
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	if binType != "" && binType != classifier.LabelHazardous && binType != classifier.LabelNonHazardous {
		return c.HandleError(ctx, fmt.Errorf("unknown bin type %q", binType),
			"Invalid type filter", http.StatusBadRequest)
	}

	var disposals []datastore.Disposal
	var total int64
	var err error

	if binType != "" {
		disposals, total, err = c.DS.GetDisposalsByType(binType, limit, offset)
	} else {
		disposals, total, err = c.DS.GetAllDisposals(limit, offset)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list disposals", http.StatusInternalServerError)
	}

	data := make([]DisposalResponse, 0, len(disposals))
	for i := range disposals {
		data = append(data, toDisposalResponse(&disposals[i]))
	}

	currentPage := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return ctx.JSON(http.StatusOK, PaginatedResponse{
		Data:        data,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
	})
}

// GetRecentDisposals handles GET /api/v2/disposals/recent. Results are cached
// briefly since dashboards poll this endpoint.
func (c *Controller) GetRecentDisposals(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit <= 0 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	cacheKey := fmt.Sprintf("recent:%d", limit)
	if cached, found := c.disposalCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	disposals, err := c.DS.GetLastDisposals(limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get recent disposals", http.StatusInternalServerError)
	}

	data := make([]DisposalResponse, 0, len(disposals))
	for i := range disposals {
		data = append(data, toDisposalResponse(&disposals[i]))
	}

	c.disposalCache.Set(cacheKey, data, time.Minute)
	return ctx.JSON(http.StatusOK, data)
}

// GetDisposal handles GET /api/v2/disposals/:id
func (c *Controller) GetDisposal(ctx echo.Context) error {
	id := ctx.Param("id")

	disposal, err := c.DS.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Disposal not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get disposal", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, toDisposalResponse(&disposal))
}

// DeleteDisposal handles DELETE /api/v2/disposals/:id. The stored image is
// removed best effort after the record is gone.
func (c *Controller) DeleteDisposal(ctx echo.Context) error {
	id := ctx.Param("id")

	disposal, err := c.DS.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Disposal not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get disposal", http.StatusInternalServerError)
	}

	if err := c.DS.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Disposal not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to delete disposal", http.StatusInternalServerError)
	}

	if disposal.ImagePath != "" {
		if err := c.Images.Remove(disposal.ImagePath); err != nil {
			c.logAPIRequest(ctx, slog.LevelWarn, "Failed to remove image for deleted disposal",
				"id", id, "image", disposal.ImagePath, "error", err.Error())
		}
	}

	c.disposalCache.Flush()

	c.logAPIRequest(ctx, slog.LevelInfo, "Disposal deleted", "id", id)
	return ctx.NoContent(http.StatusNoContent)
}
